package handlers

import (
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
	"github.com/md-rashed-zaman/salonbook/libs/httpx"
)

type Routes struct {
	Availability *AvailabilityHandler
	Bookings     *BookingHandler
	Catalog      *CatalogHandler
	Admin        *AdminHandler
	Verifier     auth.Verifier
	Logger       *slog.Logger
}

// Register mounts the public, customer and admin routes on mux.
func (rt Routes) Register(mux *http.ServeMux) {
	authed := func(h http.HandlerFunc) http.Handler {
		return httpx.Chain(h, auth.RequireAuth(rt.Verifier, rt.Logger))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return httpx.Chain(h, auth.RequireAuth(rt.Verifier, rt.Logger), auth.RequireRole(auth.RoleAdmin, auth.RoleOwner))
	}

	mux.HandleFunc("GET /api/v1/availability/slots", rt.Availability.Slots)
	mux.HandleFunc("GET /api/v1/availability/staff", rt.Availability.Staff)

	mux.HandleFunc("GET /api/v1/services", rt.Catalog.Services)
	mux.HandleFunc("GET /api/v1/services/categories", rt.Catalog.Categories)
	mux.HandleFunc("GET /api/v1/services/{id}", rt.Catalog.Service)
	mux.HandleFunc("GET /api/v1/staff", rt.Catalog.Staff)

	mux.Handle("POST /api/v1/bookings", authed(rt.Bookings.Create))
	mux.Handle("GET /api/v1/bookings", authed(rt.Bookings.List))
	mux.Handle("GET /api/v1/bookings/{id}", authed(rt.Bookings.Get))
	mux.Handle("PATCH /api/v1/bookings/{id}/cancel", authed(rt.Bookings.Cancel))

	mux.Handle("GET /api/v1/admin/bookings", admin(rt.Admin.Bookings))
	mux.Handle("PATCH /api/v1/admin/bookings/{id}/status", admin(rt.Admin.UpdateStatus))
	mux.Handle("GET /api/v1/admin/stats", admin(rt.Admin.Stats))
	mux.Handle("GET /api/v1/admin/services", admin(rt.Admin.Services))
	mux.Handle("POST /api/v1/admin/services", admin(rt.Admin.CreateService))
	mux.Handle("PUT /api/v1/admin/services/{id}", admin(rt.Admin.UpdateService))
	mux.Handle("PATCH /api/v1/admin/services/{id}/active", admin(rt.Admin.SetServiceActive))
	mux.Handle("GET /api/v1/admin/staff", admin(rt.Admin.Staff))
	mux.Handle("POST /api/v1/admin/staff", admin(rt.Admin.CreateStaff))
	mux.Handle("PATCH /api/v1/admin/staff/{id}/availability", admin(rt.Admin.SetStaffAvailable))
}
