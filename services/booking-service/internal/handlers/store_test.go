package handlers

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/errs"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/outbox"
)

// fakeStore backs the booking, availability and catalogue layers in memory.
type fakeStore struct {
	mu       sync.Mutex
	services map[string]model.Service
	staff    map[string]model.Staff
	bookings map[string]model.Booking
	statsErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		services: map[string]model.Service{
			"cut": {ID: "cut", Name: "Haircut", Category: "Hair", DurationMinutes: 60, Price: "35.00", Active: true},
		},
		staff: map[string]model.Staff{
			"s1": {ID: "s1", Name: "Ana", Specialization: "Hair Stylist", Available: true},
		},
		bookings: map[string]model.Booking{},
	}
}

func (f *fakeStore) GetService(_ context.Context, id string) (model.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.services[id]
	if !ok {
		return model.Service{}, errs.NotFound("service")
	}
	return s, nil
}

func (f *fakeStore) ListServices(_ context.Context, filter model.ServiceFilter) ([]model.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Service
	for _, s := range f.services {
		if filter.ActiveOnly && !s.Active {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListCategories(context.Context) ([]string, error) {
	return []string{"Hair"}, nil
}

func (f *fakeStore) CreateService(_ context.Context, s model.Service) (model.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.services[s.ID] = s
	return s, nil
}

func (f *fakeStore) UpdateService(_ context.Context, s model.Service) (model.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.services[s.ID] = s
	return s, nil
}

func (f *fakeStore) SetServiceActive(_ context.Context, id string, active bool) (model.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.services[id]
	if !ok {
		return model.Service{}, errs.NotFound("service")
	}
	s.Active = active
	f.services[id] = s
	return s, nil
}

func (f *fakeStore) GetStaff(_ context.Context, id string) (model.Staff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.staff[id]
	if !ok {
		return model.Staff{}, errs.NotFound("staff member")
	}
	return s, nil
}

func (f *fakeStore) ListStaff(_ context.Context, filter model.StaffFilter) ([]model.Staff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Staff
	for _, s := range f.staff {
		if filter.AvailableOnly && !s.Available {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) CreateStaff(_ context.Context, s model.Staff) (model.Staff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staff[s.ID] = s
	return s, nil
}

func (f *fakeStore) SetStaffAvailable(_ context.Context, id string, available bool) (model.Staff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.staff[id]
	if !ok {
		return model.Staff{}, errs.NotFound("staff member")
	}
	s.Available = available
	f.staff[id] = s
	return s, nil
}

func (f *fakeStore) InsertBooking(_ context.Context, b model.Booking, _ outbox.Event) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[b.ID] = b
	return b, nil
}

func (f *fakeStore) FindByIdempotencyKey(_ context.Context, customerID, key string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.CustomerID == customerID && b.IdempotencyKey == key {
			return b, nil
		}
	}
	return model.Booking{}, errs.NotFound("booking")
}

func (f *fakeStore) GetBooking(_ context.Context, id, customerID string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || (customerID != "" && b.CustomerID != customerID) {
		return model.Booking{}, errs.NotFound("booking")
	}
	return b, nil
}

func (f *fakeStore) ListBookings(_ context.Context, filter model.BookingFilter) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.bookings {
		if filter.CustomerID != "" && b.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Date != "" && b.Date != filter.Date {
			continue
		}
		if len(filter.StaffIDs) > 0 && !slices.Contains(filter.StaffIDs, b.StaffID) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (f *fakeStore) TransitionStatus(_ context.Context, t booking.Transition, _ outbox.Event) (model.Booking, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[t.BookingID]
	if !ok || (t.CustomerID != "" && b.CustomerID != t.CustomerID) {
		return model.Booking{}, false, errs.NotFound("booking")
	}
	matched := false
	for _, s := range t.From {
		if s == b.Status {
			matched = true
		}
	}
	if !matched {
		return model.Booking{}, false, nil
	}
	b.Status = t.To
	if t.To == model.StatusCancelled {
		at := t.At
		b.CancelledAt = &at
		b.CancelReason = t.Reason
	}
	f.bookings[b.ID] = b
	return b, true, nil
}

func (f *fakeStore) UpdateCustomerContact(context.Context, model.CustomerContact) error {
	return nil
}

func (f *fakeStore) Stats(context.Context, string) (model.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statsErr != nil {
		return model.DashboardStats{}, f.statsErr
	}
	return model.DashboardStats{TotalBookings: len(f.bookings), ActiveServices: len(f.services)}, nil
}
