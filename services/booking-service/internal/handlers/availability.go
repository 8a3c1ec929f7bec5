package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
)

type SlotSource interface {
	AvailableSlots(ctx context.Context, q availability.SlotQuery) (availability.SlotResult, error)
}

type StaffSource interface {
	AvailableStaff(ctx context.Context, q availability.StaffQuery) (availability.StaffResult, error)
}

type AvailabilityHandler struct {
	slots  SlotSource
	staff  StaffSource
	logger *slog.Logger
}

func NewAvailabilityHandler(slots SlotSource, staff StaffSource, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{slots: slots, staff: staff, logger: logger}
}

// Slots handles GET /api/v1/availability/slots?date=&serviceId=&staffId=
func (h *AvailabilityHandler) Slots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.slots.AvailableSlots(r.Context(), availability.SlotQuery{
		Date:      strings.TrimSpace(q.Get("date")),
		ServiceID: strings.TrimSpace(q.Get("serviceId")),
		StaffID:   strings.TrimSpace(q.Get("staffId")),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// Staff handles GET /api/v1/availability/staff?date=&time=&serviceId=
func (h *AvailabilityHandler) Staff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.staff.AvailableStaff(r.Context(), availability.StaffQuery{
		Date:      strings.TrimSpace(q.Get("date")),
		Time:      strings.TrimSpace(q.Get("time")),
		ServiceID: strings.TrimSpace(q.Get("serviceId")),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}
