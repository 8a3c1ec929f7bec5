package booking

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/errs"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/outbox"
)

// memStore mimics the Postgres store, including the exclusion constraint and the
// idempotency index.
type memStore struct {
	mu       sync.Mutex
	services map[string]model.Service
	staff    map[string]model.Staff
	bookings map[string]model.Booking
	events   []outbox.Event
	contacts []model.CustomerContact

	contactErr   error
	insertErr    error
	beforeUpdate func(b *model.Booking)
}

func newMemStore() *memStore {
	return &memStore{
		services: map[string]model.Service{
			"cut":     {ID: "cut", Name: "Haircut", Category: "Hair", DurationMinutes: 60, Price: "35.00", Active: true},
			"color":   {ID: "color", Name: "Colour", Category: "Hair", DurationMinutes: 90, Price: "80.00", Active: true},
			"retired": {ID: "retired", Name: "Perm", Category: "Hair", DurationMinutes: 60, Price: "50.00", Active: false},
		},
		staff: map[string]model.Staff{
			"s1": {ID: "s1", Name: "Ana", Specialization: "Hair Stylist", Available: true},
			"s2": {ID: "s2", Name: "Ben", Specialization: "Stylist", Available: false},
		},
		bookings: map[string]model.Booking{},
	}
}

func (m *memStore) GetService(_ context.Context, id string) (model.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.services[id]
	if !ok {
		return model.Service{}, errs.NotFound("service")
	}
	return s, nil
}

func (m *memStore) GetStaff(_ context.Context, id string) (model.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.staff[id]
	if !ok {
		return model.Staff{}, errs.NotFound("staff")
	}
	return s, nil
}

func (m *memStore) ListStaff(_ context.Context, filter model.StaffFilter) ([]model.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Staff
	for _, s := range m.staff {
		if filter.AvailableOnly && !s.Available {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) InsertBooking(_ context.Context, b model.Booking, evt outbox.Event) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return model.Booking{}, m.insertErr
	}
	for _, other := range m.bookings {
		if b.IdempotencyKey != "" && other.CustomerID == b.CustomerID && other.IdempotencyKey == b.IdempotencyKey {
			return model.Booking{}, errs.ErrDuplicateRequest
		}
		if b.StaffID == "" || other.StaffID != b.StaffID || other.Date != b.Date || !other.Status.Blocking() {
			continue
		}
		a, _ := availability.BookingInterval(other)
		c, _ := availability.BookingInterval(b)
		if a.Overlaps(c) {
			return model.Booking{}, errs.New(errs.KindSlotConflict, "exclusion constraint")
		}
	}
	m.bookings[b.ID] = b
	m.events = append(m.events, evt)
	return b, nil
}

func (m *memStore) FindByIdempotencyKey(_ context.Context, customerID, key string) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.CustomerID == customerID && b.IdempotencyKey == key {
			return b, nil
		}
	}
	return model.Booking{}, errs.NotFound("booking")
}

func (m *memStore) GetBooking(_ context.Context, id, customerID string) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || (customerID != "" && b.CustomerID != customerID) {
		return model.Booking{}, errs.NotFound("booking")
	}
	return b, nil
}

func (m *memStore) ListBookings(_ context.Context, filter model.BookingFilter) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Booking
	for _, b := range m.bookings {
		if filter.CustomerID != "" && b.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Date != "" && b.Date != filter.Date {
			continue
		}
		if filter.FromDate != "" && b.Date < filter.FromDate {
			continue
		}
		if len(filter.StaffIDs) > 0 && !containsString(filter.StaffIDs, b.StaffID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, b.Status) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date+out[i].StartTime < out[j].Date+out[j].StartTime
	})
	return out, nil
}

func (m *memStore) TransitionStatus(_ context.Context, t Transition, evt outbox.Event) (model.Booking, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[t.BookingID]
	if !ok || (t.CustomerID != "" && b.CustomerID != t.CustomerID) {
		return model.Booking{}, false, errs.NotFound("booking")
	}
	if m.beforeUpdate != nil {
		m.beforeUpdate(&b)
		m.bookings[b.ID] = b
		m.beforeUpdate = nil
	}
	if !containsStatus(t.From, b.Status) {
		return model.Booking{}, false, nil
	}
	b.Status = t.To
	b.UpdatedAt = t.At
	if t.To == model.StatusCancelled {
		at := t.At
		b.CancelledAt = &at
		b.CancelReason = t.Reason
	}
	m.bookings[b.ID] = b
	m.events = append(m.events, evt)
	return b, true, nil
}

func (m *memStore) UpdateCustomerContact(_ context.Context, c model.CustomerContact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.contactErr != nil {
		return m.contactErr
	}
	m.contacts = append(m.contacts, c)
	return nil
}

func (m *memStore) Stats(_ context.Context, today string) (model.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st model.DashboardStats
	customers := map[string]bool{}
	for _, b := range m.bookings {
		st.TotalBookings++
		customers[b.CustomerID] = true
		if b.Status == model.StatusPending {
			st.PendingBookings++
		}
		if b.Status == model.StatusConfirmed && b.Date == today {
			st.ConfirmedToday++
		}
	}
	st.TotalCustomers = len(customers)
	for _, s := range m.services {
		if s.Active {
			st.ActiveServices++
		}
	}
	return st, nil
}

type recordingInvalidator struct {
	mu    sync.Mutex
	dates []string
	err   error
}

func (r *recordingInvalidator) InvalidateDate(_ context.Context, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dates = append(r.dates, date)
	return r.err
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsStatus(list []model.Status, v model.Status) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

var errBoom = errors.New("boom")
