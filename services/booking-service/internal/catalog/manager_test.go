package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/errs"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type memCatalog struct {
	services map[string]model.Service
	staff    map[string]model.Staff
}

func newMemCatalog() *memCatalog {
	return &memCatalog{services: map[string]model.Service{}, staff: map[string]model.Staff{}}
}

func (m *memCatalog) GetService(_ context.Context, id string) (model.Service, error) {
	s, ok := m.services[id]
	if !ok {
		return model.Service{}, errs.NotFound("service")
	}
	return s, nil
}

func (m *memCatalog) ListServices(_ context.Context, f model.ServiceFilter) ([]model.Service, error) {
	var out []model.Service
	for _, s := range m.services {
		if f.ActiveOnly && !s.Active {
			continue
		}
		if f.Category != "" && s.Category != f.Category {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memCatalog) ListCategories(context.Context) ([]string, error) { return nil, nil }

func (m *memCatalog) CreateService(_ context.Context, s model.Service) (model.Service, error) {
	m.services[s.ID] = s
	return s, nil
}

func (m *memCatalog) UpdateService(_ context.Context, s model.Service) (model.Service, error) {
	m.services[s.ID] = s
	return s, nil
}

func (m *memCatalog) SetServiceActive(_ context.Context, id string, active bool) (model.Service, error) {
	s, ok := m.services[id]
	if !ok {
		return model.Service{}, errs.NotFound("service")
	}
	s.Active = active
	m.services[id] = s
	return s, nil
}

func (m *memCatalog) ListStaff(_ context.Context, f model.StaffFilter) ([]model.Staff, error) {
	var out []model.Staff
	for _, s := range m.staff {
		if f.AvailableOnly && !s.Available {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memCatalog) CreateStaff(_ context.Context, s model.Staff) (model.Staff, error) {
	m.staff[s.ID] = s
	return s, nil
}

func (m *memCatalog) SetStaffAvailable(_ context.Context, id string, available bool) (model.Staff, error) {
	s, ok := m.staff[id]
	if !ok {
		return model.Staff{}, errs.NotFound("staff member")
	}
	s.Available = available
	m.staff[id] = s
	return s, nil
}

type countingPurger struct{ n int }

func (p *countingPurger) Purge(context.Context) error {
	p.n++
	return nil
}

func newTestManager() (*Manager, *memCatalog, *countingPurger) {
	store := newMemCatalog()
	purger := &countingPurger{}
	m := NewManager(store, DefaultTaxonomy(), purger, slog.New(slog.NewTextHandler(io.Discard, nil)))
	n := 0
	m.newID = func() string {
		n++
		return "id-" + string(rune('0'+n))
	}
	return m, store, purger
}

func TestCreateServiceDefaultsActiveAndPurges(t *testing.T) {
	m, _, purger := newTestManager()
	s, err := m.CreateService(context.Background(), ServiceInput{
		Name:            "  Haircut ",
		Category:        "Hair",
		DurationMinutes: 60,
		Price:           "50.00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.ID != "id-1" || s.Name != "Haircut" || !s.Active {
		t.Fatalf("unexpected service: %+v", s)
	}
	if purger.n != 1 {
		t.Fatalf("expected cache purge, got %d", purger.n)
	}
}

func TestCreateServiceValidation(t *testing.T) {
	m, _, purger := newTestManager()
	cases := []struct {
		name string
		in   ServiceInput
	}{
		{"missing fields", ServiceInput{}},
		{"zero duration", ServiceInput{Name: "x", Category: "Hair", Price: "10"}},
		{"non numeric price", ServiceInput{Name: "x", Category: "Hair", DurationMinutes: 30, Price: "ten"}},
		{"negative price", ServiceInput{Name: "x", Category: "Hair", DurationMinutes: 30, Price: "-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.CreateService(context.Background(), tc.in)
			if !errors.Is(err, errs.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if purger.n != 0 {
		t.Fatalf("rejected input must not purge the cache")
	}
}

func TestUpdateServiceKeepsActiveWhenOmitted(t *testing.T) {
	m, store, _ := newTestManager()
	store.services["s1"] = model.Service{ID: "s1", Name: "Old", Category: "Hair", DurationMinutes: 30, Price: "10", Active: false}

	s, err := m.UpdateService(context.Background(), "s1", ServiceInput{Name: "New", Category: "Hair", DurationMinutes: 45, Price: "12"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if s.Active || s.Name != "New" || s.DurationMinutes != 45 {
		t.Fatalf("unexpected service: %+v", s)
	}

	if _, err := m.UpdateService(context.Background(), "missing", ServiceInput{Name: "New", Category: "Hair", DurationMinutes: 45, Price: "12"}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceHidesInactive(t *testing.T) {
	m, store, _ := newTestManager()
	store.services["s1"] = model.Service{ID: "s1", Name: "Facial", Category: "Spa", Active: false}

	if _, err := m.Service(context.Background(), "s1"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found for inactive service, got %v", err)
	}
	if _, err := m.SetServiceActive(context.Background(), "s1", true); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := m.Service(context.Background(), "s1"); err != nil {
		t.Fatalf("expected active service, got %v", err)
	}
}

func TestCreateStaffAndToggleAvailability(t *testing.T) {
	m, _, purger := newTestManager()
	no := false
	st, err := m.CreateStaff(context.Background(), StaffInput{Name: "Ana", Specialization: "Hair Stylist", Available: &no})
	if err != nil {
		t.Fatalf("create staff: %v", err)
	}
	if st.Available {
		t.Fatalf("expected explicit availability to be kept")
	}

	list, _ := m.Staff(context.Background(), true)
	if len(list) != 0 {
		t.Fatalf("expected no available staff, got %d", len(list))
	}
	if _, err := m.SetStaffAvailable(context.Background(), st.ID, true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	list, _ = m.Staff(context.Background(), true)
	if len(list) != 1 {
		t.Fatalf("expected one available staff member, got %d", len(list))
	}
	if purger.n != 2 {
		t.Fatalf("expected 2 purges, got %d", purger.n)
	}

	if _, err := m.CreateStaff(context.Background(), StaffInput{Name: "Bo"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
