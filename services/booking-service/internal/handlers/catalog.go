package handlers

import (
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type CatalogHandler struct {
	mgr    *catalog.Manager
	logger *slog.Logger
}

func NewCatalogHandler(mgr *catalog.Manager, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{mgr: mgr, logger: logger}
}

type servicesResponse struct {
	Services []model.Service `json:"services"`
}

type staffResponse struct {
	Staff []model.Staff `json:"staff"`
}

// Services handles GET /api/v1/services?category=&q=
func (h *CatalogHandler) Services(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.mgr.Services(r.Context(), q.Get("category"), q.Get("q"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if out == nil {
		out = []model.Service{}
	}
	httpx.WriteJSON(w, http.StatusOK, servicesResponse{Services: out})
}

func (h *CatalogHandler) Service(w http.ResponseWriter, r *http.Request) {
	s, err := h.mgr.Service(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	out, err := h.mgr.Categories(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if out == nil {
		out = []string{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string][]string{"categories": out})
}

// Staff handles GET /api/v1/staff and lists staff currently taking bookings.
func (h *CatalogHandler) Staff(w http.ResponseWriter, r *http.Request) {
	out, err := h.mgr.Staff(r.Context(), true)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if out == nil {
		out = []model.Staff{}
	}
	httpx.WriteJSON(w, http.StatusOK, staffResponse{Staff: out})
}
