package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/errs"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

// AdminHandler serves the salon dashboard. Routes are mounted behind RequireRole.
type AdminHandler struct {
	bookings *booking.Service
	catalog  *catalog.Manager
	logger   *slog.Logger
}

func NewAdminHandler(bookings *booking.Service, mgr *catalog.Manager, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{bookings: bookings, catalog: mgr, logger: logger}
}

type statusRequest struct {
	Status       string `json:"status"`
	CancelReason string `json:"cancel_reason"`
}

type toggleRequest struct {
	Active    *bool `json:"is_active"`
	Available *bool `json:"is_available"`
}

// Bookings handles GET /api/v1/admin/bookings?date=, defaulting to today.
func (h *AdminHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	out, err := h.bookings.ListForDate(r.Context(), strings.TrimSpace(r.URL.Query().Get("date")))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if out == nil {
		out = []model.Booking{}
	}
	httpx.WriteJSON(w, http.StatusOK, bookingsResponse{Bookings: out})
}

func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	to, ok := model.ParseStatus(req.Status)
	if !ok {
		writeError(w, r, h.logger, errs.Validation("status must be one of: pending, confirmed, completed, cancelled").Arg("field", "status"))
		return
	}
	b, err := h.bookings.UpdateStatus(r.Context(), r.PathValue("id"), to, req.CancelReason)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bookingResponse{Booking: b})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.bookings.Stats(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

func (h *AdminHandler) Services(w http.ResponseWriter, r *http.Request) {
	out, err := h.catalog.AllServices(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if out == nil {
		out = []model.Service{}
	}
	httpx.WriteJSON(w, http.StatusOK, servicesResponse{Services: out})
}

func (h *AdminHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var in catalog.ServiceInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeDecodeError(w, err)
		return
	}
	s, err := h.catalog.CreateService(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, s)
}

func (h *AdminHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var in catalog.ServiceInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeDecodeError(w, err)
		return
	}
	s, err := h.catalog.UpdateService(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}

func (h *AdminHandler) SetServiceActive(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.Active == nil {
		writeError(w, r, h.logger, errs.Missing("is_active"))
		return
	}
	s, err := h.catalog.SetServiceActive(r.Context(), r.PathValue("id"), *req.Active)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}

func (h *AdminHandler) Staff(w http.ResponseWriter, r *http.Request) {
	out, err := h.catalog.Staff(r.Context(), false)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if out == nil {
		out = []model.Staff{}
	}
	httpx.WriteJSON(w, http.StatusOK, staffResponse{Staff: out})
}

func (h *AdminHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var in catalog.StaffInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeDecodeError(w, err)
		return
	}
	s, err := h.catalog.CreateStaff(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, s)
}

func (h *AdminHandler) SetStaffAvailable(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.Available == nil {
		writeError(w, r, h.logger, errs.Missing("is_available"))
		return
	}
	s, err := h.catalog.SetStaffAvailable(r.Context(), r.PathValue("id"), *req.Available)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}
