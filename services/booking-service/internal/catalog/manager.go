package catalog

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/errs"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/validate"
)

type Store interface {
	GetService(ctx context.Context, id string) (model.Service, error)
	ListServices(ctx context.Context, filter model.ServiceFilter) ([]model.Service, error)
	ListCategories(ctx context.Context) ([]string, error)
	CreateService(ctx context.Context, s model.Service) (model.Service, error)
	UpdateService(ctx context.Context, s model.Service) (model.Service, error)
	SetServiceActive(ctx context.Context, id string, active bool) (model.Service, error)

	ListStaff(ctx context.Context, filter model.StaffFilter) ([]model.Staff, error)
	CreateStaff(ctx context.Context, s model.Staff) (model.Staff, error)
	SetStaffAvailable(ctx context.Context, id string, available bool) (model.Staff, error)
}

// Purger drops every cached availability result. Catalogue changes can affect any date.
type Purger interface {
	Purge(ctx context.Context) error
}

// Manager serves the public catalogue and the admin edits to it.
type Manager struct {
	store    Store
	taxonomy *Taxonomy
	cache    Purger
	logger   *slog.Logger
	newID    func() string
}

func NewManager(store Store, taxonomy *Taxonomy, cache Purger, logger *slog.Logger) *Manager {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, taxonomy: taxonomy, cache: cache, logger: logger, newID: uuid.NewString}
}

type ServiceInput struct {
	Name            string `json:"name" validate:"required,max=120"`
	Description     string `json:"description" validate:"max=1000"`
	Category        string `json:"category" validate:"required,max=60"`
	DurationMinutes int    `json:"duration" validate:"required,gt=0,max=720"`
	Price           string `json:"price" validate:"required,numeric"`
	Active          *bool  `json:"is_active"`
}

func (in *ServiceInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Price = strings.TrimSpace(in.Price)
}

func (in ServiceInput) validate() error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	if p, _ := strconv.ParseFloat(in.Price, 64); p < 0 {
		return errs.Validation("price must not be negative").Arg("field", "price")
	}
	return nil
}

type StaffInput struct {
	Name            string `json:"name" validate:"required,max=120"`
	Specialization  string `json:"specialization" validate:"required,max=120"`
	Bio             string `json:"bio" validate:"max=2000"`
	ExperienceYears int    `json:"experience_years" validate:"gte=0,max=80"`
	Available       *bool  `json:"is_available"`
}

// Services lists the active catalogue, optionally narrowed by category and a name search.
func (m *Manager) Services(ctx context.Context, category, query string) ([]model.Service, error) {
	return m.store.ListServices(ctx, model.ServiceFilter{
		Category:   strings.TrimSpace(category),
		Query:      strings.TrimSpace(query),
		ActiveOnly: true,
	})
}

func (m *Manager) AllServices(ctx context.Context) ([]model.Service, error) {
	return m.store.ListServices(ctx, model.ServiceFilter{})
}

// Service returns an active service; inactive ones are hidden from customers.
func (m *Manager) Service(ctx context.Context, id string) (model.Service, error) {
	s, err := m.store.GetService(ctx, id)
	if err != nil {
		return model.Service{}, err
	}
	if !s.Active {
		return model.Service{}, errs.NotFound("service")
	}
	return s, nil
}

func (m *Manager) Categories(ctx context.Context) ([]string, error) {
	return m.store.ListCategories(ctx)
}

func (m *Manager) CreateService(ctx context.Context, in ServiceInput) (model.Service, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return model.Service{}, err
	}
	if !m.taxonomy.Known(in.Category) {
		m.logger.Warn("service category has no specialization mapping", "category", in.Category)
	}
	s, err := m.store.CreateService(ctx, model.Service{
		ID:              m.newID(),
		Name:            in.Name,
		Description:     in.Description,
		Category:        in.Category,
		DurationMinutes: in.DurationMinutes,
		Price:           in.Price,
		Active:          in.Active == nil || *in.Active,
	})
	if err != nil {
		return model.Service{}, err
	}
	m.purge(ctx)
	return s, nil
}

func (m *Manager) UpdateService(ctx context.Context, id string, in ServiceInput) (model.Service, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return model.Service{}, err
	}
	current, err := m.store.GetService(ctx, id)
	if err != nil {
		return model.Service{}, err
	}
	active := current.Active
	if in.Active != nil {
		active = *in.Active
	}
	s, err := m.store.UpdateService(ctx, model.Service{
		ID:              current.ID,
		Name:            in.Name,
		Description:     in.Description,
		Category:        in.Category,
		DurationMinutes: in.DurationMinutes,
		Price:           in.Price,
		Active:          active,
	})
	if err != nil {
		return model.Service{}, err
	}
	m.purge(ctx)
	return s, nil
}

func (m *Manager) SetServiceActive(ctx context.Context, id string, active bool) (model.Service, error) {
	s, err := m.store.SetServiceActive(ctx, id, active)
	if err != nil {
		return model.Service{}, err
	}
	m.purge(ctx)
	return s, nil
}

func (m *Manager) Staff(ctx context.Context, availableOnly bool) ([]model.Staff, error) {
	return m.store.ListStaff(ctx, model.StaffFilter{AvailableOnly: availableOnly})
}

func (m *Manager) CreateStaff(ctx context.Context, in StaffInput) (model.Staff, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Specialization = strings.TrimSpace(in.Specialization)
	in.Bio = strings.TrimSpace(in.Bio)
	if err := validate.Struct(in); err != nil {
		return model.Staff{}, err
	}
	if !m.servesAnyCategory(in.Specialization) {
		m.logger.Warn("staff specialization matches no category", "specialization", in.Specialization)
	}
	s, err := m.store.CreateStaff(ctx, model.Staff{
		ID:              m.newID(),
		Name:            in.Name,
		Specialization:  in.Specialization,
		Bio:             in.Bio,
		ExperienceYears: in.ExperienceYears,
		Available:       in.Available == nil || *in.Available,
	})
	if err != nil {
		return model.Staff{}, err
	}
	m.purge(ctx)
	return s, nil
}

func (m *Manager) SetStaffAvailable(ctx context.Context, id string, available bool) (model.Staff, error) {
	s, err := m.store.SetStaffAvailable(ctx, id, available)
	if err != nil {
		return model.Staff{}, err
	}
	m.purge(ctx)
	return s, nil
}

func (m *Manager) servesAnyCategory(specialization string) bool {
	for _, c := range m.taxonomy.Categories() {
		if m.taxonomy.Eligible(c, specialization) {
			return true
		}
	}
	return false
}

func (m *Manager) purge(ctx context.Context) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Purge(ctx); err != nil {
		m.logger.Warn("availability cache purge failed", "err", err)
	}
}
