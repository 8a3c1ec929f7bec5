package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type BookingHandler struct {
	svc    *booking.Service
	logger *slog.Logger
}

func NewBookingHandler(svc *booking.Service, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

type bookingResponse struct {
	Booking model.Booking `json:"booking"`
}

type bookingsResponse struct {
	Bookings []model.Booking `json:"bookings"`
}

type cancelRequest struct {
	CancelReason string `json:"cancel_reason"`
}

// Create handles POST /api/v1/bookings. A replayed Idempotency-Key answers 200 with the
// original booking; a new booking answers 201.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req booking.CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get("Idempotency-Key"))

	res, err := h.svc.Create(r.Context(), auth.SubjectFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
		w.Header().Set("Idempotent-Replayed", "true")
	}
	httpx.WriteJSON(w, status, bookingResponse{Booking: res.Booking})
}

// List handles GET /api/v1/bookings?upcoming=true
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	upcoming := strings.EqualFold(r.URL.Query().Get("upcoming"), "true")
	out, err := h.svc.List(r.Context(), auth.SubjectFromContext(r.Context()), upcoming)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if out == nil {
		out = []model.Booking{}
	}
	httpx.WriteJSON(w, http.StatusOK, bookingsResponse{Bookings: out})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), auth.SubjectFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bookingResponse{Booking: b})
}

// Cancel handles PATCH /api/v1/bookings/{id}/cancel. The body is optional.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		writeDecodeError(w, err)
		return
	}
	b, err := h.svc.Cancel(r.Context(), auth.SubjectFromContext(r.Context()), r.PathValue("id"), req.CancelReason)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bookingResponse{Booking: b})
}
