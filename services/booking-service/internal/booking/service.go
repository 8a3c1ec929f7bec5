// Package booking implements the booking workflows: creation with an authoritative
// conflict re-check, customer cancellation under the lead-time rule, and the admin
// status transitions.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/errs"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/outbox"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/validate"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultCancelLeadTime = 2 * time.Hour
	DefaultCancelReason   = "Customer cancelled"
)

type Service struct {
	store    Store
	engine   *availability.Engine
	cache    DateInvalidator
	logger   *slog.Logger
	now      func() time.Time
	leadTime time.Duration
	newID    func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithCancelLeadTime(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.leadTime = d
		}
	}
}

func WithInvalidator(c DateInvalidator) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

func NewService(store Store, engine *availability.Engine, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		engine:   engine,
		cache:    noopInvalidator{},
		logger:   logger,
		now:      time.Now,
		leadTime: DefaultCancelLeadTime,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type CreateRequest struct {
	ServiceID     string `json:"serviceId" validate:"required"`
	StaffID       string `json:"staffId"`
	Date          string `json:"date" validate:"required"`
	Time          string `json:"time" validate:"required"`
	Notes         string `json:"notes" validate:"max=1000"`
	CustomerName  string `json:"customerName" validate:"required,max=200"`
	CustomerPhone string `json:"customerPhone" validate:"required,max=32"`
	// IdempotencyKey comes from the Idempotency-Key header.
	IdempotencyKey string `json:"-" validate:"max=128"`
}

func (r *CreateRequest) normalize() {
	r.ServiceID = strings.TrimSpace(r.ServiceID)
	r.StaffID = strings.TrimSpace(r.StaffID)
	if strings.EqualFold(r.StaffID, "any") {
		r.StaffID = ""
	}
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.Notes = strings.TrimSpace(r.Notes)
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CustomerPhone = strings.TrimSpace(r.CustomerPhone)
	r.IdempotencyKey = strings.TrimSpace(r.IdempotencyKey)
}

type CreateResult struct {
	Booking model.Booking
	// Replayed is true when an earlier booking with the same idempotency key was returned.
	Replayed bool
}

// Create books req for customerID as a pending booking.
func (s *Service) Create(ctx context.Context, customerID string, req CreateRequest) (res CreateResult, err error) {
	ctx, span := otelx.StartSpan(ctx, "booking.Create",
		attribute.String("booking.service_id", req.ServiceID),
		attribute.String("booking.staff_id", req.StaffID),
		attribute.String("booking.date", req.Date),
	)
	defer func() { otelx.EndSpan(span, err) }()

	if customerID == "" {
		return CreateResult{}, errs.New(errs.KindUnauthorized, "authentication required")
	}
	req.normalize()
	if err := validate.Struct(req); err != nil {
		return CreateResult{}, err
	}

	if req.IdempotencyKey != "" {
		prev, err := s.store.FindByIdempotencyKey(ctx, customerID, req.IdempotencyKey)
		switch {
		case err == nil:
			return s.replay(prev, req)
		case !errors.Is(err, errs.ErrNotFound):
			return CreateResult{}, errs.Internal(err)
		}
	}

	loc := s.engine.Location()
	day, err := availability.ParseDate(req.Date, loc)
	if err != nil {
		return CreateResult{}, errs.Validation("date must be YYYY-MM-DD").Arg("date", req.Date)
	}
	startMin, err := availability.ClockToMinutes(req.Time)
	if err != nil {
		return CreateResult{}, errs.Validation("time must be HH:MM").Arg("time", req.Time)
	}
	now := s.now()
	if !day.Add(time.Duration(startMin) * time.Minute).After(now) {
		return CreateResult{}, errs.Validation("booking time must be in the future").Arg("date", req.Date).Arg("time", req.Time)
	}

	svc, err := s.store.GetService(ctx, req.ServiceID)
	if err != nil {
		return CreateResult{}, lookupErr(err, "service")
	}
	if !svc.Active {
		return CreateResult{}, errs.New(errs.KindServiceInactive, "service is not currently available").Arg("serviceId", svc.ID)
	}

	slot := availability.Interval{Start: startMin, End: startMin + svc.DurationMinutes}
	hours := s.engine.Hours()
	if !hours.Within(slot.Start, slot.End) {
		return CreateResult{}, errs.Validation("booking must start and finish within business hours").
			Arg("open", availability.MinutesToClock(hours.Open)).
			Arg("close", availability.MinutesToClock(hours.Close))
	}

	var staff model.Staff
	if req.StaffID != "" {
		staff, err = s.store.GetStaff(ctx, req.StaffID)
		if err != nil {
			return CreateResult{}, lookupErr(err, "staff member")
		}
		if !staff.Available {
			return CreateResult{}, errs.New(errs.KindStaffUnavailable, "staff member is not available").Arg("staffId", staff.ID)
		}
		if err := s.checkConflicts(ctx, staff.ID, req.Date, slot); err != nil {
			return CreateResult{}, err
		}
	}

	b := model.Booking{
		ID:              s.newID(),
		CustomerID:      customerID,
		ServiceID:       svc.ID,
		StaffID:         staff.ID,
		Date:            req.Date,
		StartTime:       availability.MinutesToClock(slot.Start),
		EndTime:         availability.MinutesToClock(slot.End),
		DurationMinutes: svc.DurationMinutes,
		Status:          model.StatusPending,
		TotalPrice:      svc.Price,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
		IdempotencyKey:  req.IdempotencyKey,
	}
	evt, err := outbox.NewBookingEvent(outbox.EventBookingCreated, b, "", now)
	if err != nil {
		return CreateResult{}, errs.Internal(err)
	}

	saved, err := s.store.InsertBooking(ctx, b, evt)
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrSlotConflict):
		// Lost the race to a concurrent booking; report what now occupies the slot.
		if cerr := s.checkConflicts(ctx, staff.ID, req.Date, slot); cerr != nil {
			return CreateResult{}, cerr
		}
		return CreateResult{}, errs.New(errs.KindSlotConflict, "time slot already booked")
	case errors.Is(err, errs.ErrDuplicateRequest):
		prev, ferr := s.store.FindByIdempotencyKey(ctx, customerID, req.IdempotencyKey)
		if ferr != nil {
			return CreateResult{}, errs.Internal(ferr)
		}
		return s.replay(prev, req)
	default:
		return CreateResult{}, errs.Internal(err)
	}

	s.syncContact(ctx, model.CustomerContact{CustomerID: customerID, Name: req.CustomerName, Phone: req.CustomerPhone})
	s.invalidate(ctx, saved.Date)

	saved.ServiceName = svc.Name
	saved.StaffName = staff.Name
	saved.CustomerName = req.CustomerName
	saved.CustomerPhone = req.CustomerPhone
	s.logger.Info("booking created",
		"booking_id", saved.ID,
		"customer_id", customerID,
		"service_id", svc.ID,
		"staff_id", staff.ID,
		"date", saved.Date,
		"start_time", saved.StartTime,
	)
	return CreateResult{Booking: saved}, nil
}

func (s *Service) checkConflicts(ctx context.Context, staffID, date string, slot availability.Interval) error {
	conflicts, err := s.engine.Conflicts(ctx, staffID, date, slot)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		return nil
	}
	out := make([]availability.ClockInterval, len(conflicts))
	for i, c := range conflicts {
		out[i] = c.Clock()
	}
	return errs.New(errs.KindSlotConflict, "time slot already booked").Arg("conflicts", out)
}

// replay returns the booking created earlier under the same idempotency key, provided
// the retry asks for the same thing.
func (s *Service) replay(prev model.Booking, req CreateRequest) (CreateResult, error) {
	if prev.ServiceID != req.ServiceID || prev.Date != req.Date || prev.StartTime != normalizeClock(req.Time) ||
		(req.StaffID != "" && prev.StaffID != req.StaffID) {
		return CreateResult{}, errs.Validation("Idempotency-Key was already used for a different booking")
	}
	return CreateResult{Booking: prev, Replayed: true}, nil
}

func normalizeClock(clock string) string {
	m, err := availability.ClockToMinutes(clock)
	if err != nil {
		return clock
	}
	return availability.MinutesToClock(m)
}

func (s *Service) syncContact(ctx context.Context, c model.CustomerContact) {
	if err := s.store.UpdateCustomerContact(ctx, c); err != nil {
		s.logger.Warn("customer contact sync failed", "customer_id", c.CustomerID, "err", err)
	}
}

func (s *Service) invalidate(ctx context.Context, date string) {
	if err := s.cache.InvalidateDate(ctx, date); err != nil {
		s.logger.Warn("availability cache invalidation failed", "date", date, "err", err)
	}
}

// Cancel moves a customer's pending or confirmed booking to cancelled, provided it
// starts more than the lead time from now.
func (s *Service) Cancel(ctx context.Context, customerID, bookingID, reason string) (b model.Booking, err error) {
	ctx, span := otelx.StartSpan(ctx, "booking.Cancel", attribute.String("booking.id", bookingID))
	defer func() { otelx.EndSpan(span, err) }()

	if customerID == "" {
		return model.Booking{}, errs.New(errs.KindUnauthorized, "authentication required")
	}
	current, err := s.store.GetBooking(ctx, bookingID, customerID)
	if err != nil {
		return model.Booking{}, lookupErr(err, "booking")
	}
	if err := terminalErr(current.Status); err != nil {
		return model.Booking{}, err
	}

	start, err := s.startInstant(current)
	if err != nil {
		return model.Booking{}, errs.Internal(err)
	}
	now := s.now()
	remaining := start.Sub(now)
	if remaining <= s.leadTime {
		return model.Booking{}, errs.Newf(errs.KindTooLateToCancel, "bookings can only be cancelled more than %s before the start time", formatLead(s.leadTime)).
			Arg("hoursRemaining", roundHours(remaining))
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultCancelReason
	}
	if len(reason) > 500 {
		return model.Booking{}, errs.Validation("cancel_reason must be at most 500 characters").Arg("field", "cancel_reason")
	}

	return s.transition(ctx, current, Transition{
		BookingID:  current.ID,
		CustomerID: customerID,
		From:       []model.Status{model.StatusPending, model.StatusConfirmed},
		To:         model.StatusCancelled,
		At:         now,
		Reason:     reason,
	})
}

// UpdateStatus is the admin transition. It follows the status machine but not the
// customer lead-time rule.
func (s *Service) UpdateStatus(ctx context.Context, bookingID string, to model.Status, reason string) (b model.Booking, err error) {
	ctx, span := otelx.StartSpan(ctx, "booking.UpdateStatus",
		attribute.String("booking.id", bookingID),
		attribute.String("booking.status", string(to)),
	)
	defer func() { otelx.EndSpan(span, err) }()

	current, err := s.store.GetBooking(ctx, bookingID, "")
	if err != nil {
		return model.Booking{}, lookupErr(err, "booking")
	}
	if !current.Status.CanTransition(to) {
		return model.Booking{}, errs.Newf(errs.KindInvalidTransition, "cannot move booking from %s to %s", current.Status, to).
			Arg("from", current.Status).
			Arg("to", to)
	}
	reason = strings.TrimSpace(reason)
	if to == model.StatusCancelled && reason == "" {
		reason = "Cancelled by salon"
	}
	return s.transition(ctx, current, Transition{
		BookingID: current.ID,
		From:      []model.Status{current.Status},
		To:        to,
		At:        s.now(),
		Reason:    reason,
	})
}

func (s *Service) transition(ctx context.Context, current model.Booking, t Transition) (model.Booking, error) {
	next := current
	next.Status = t.To
	next.UpdatedAt = t.At
	if t.To == model.StatusCancelled {
		at := t.At
		next.CancelledAt = &at
		next.CancelReason = t.Reason
	}
	evt, err := outbox.NewBookingEvent(outbox.TransitionEventType(t.To), next, current.Status, t.At)
	if err != nil {
		return model.Booking{}, errs.Internal(err)
	}

	updated, applied, err := s.store.TransitionStatus(ctx, t, evt)
	if err != nil {
		return model.Booking{}, lookupErr(err, "booking")
	}
	if !applied {
		// Someone else moved the booking first; report against its current status.
		latest, err := s.store.GetBooking(ctx, t.BookingID, t.CustomerID)
		if err != nil {
			return model.Booking{}, lookupErr(err, "booking")
		}
		if terr := terminalErr(latest.Status); terr != nil {
			return model.Booking{}, terr
		}
		return model.Booking{}, errs.Newf(errs.KindInvalidTransition, "booking is now %s", latest.Status).Arg("status", latest.Status)
	}

	s.invalidate(ctx, updated.Date)
	s.logger.Info("booking status changed",
		"booking_id", updated.ID,
		"from", current.Status,
		"to", updated.Status,
	)
	return updated, nil
}

func (s *Service) Get(ctx context.Context, customerID, bookingID string) (model.Booking, error) {
	if customerID == "" {
		return model.Booking{}, errs.New(errs.KindUnauthorized, "authentication required")
	}
	b, err := s.store.GetBooking(ctx, bookingID, customerID)
	if err != nil {
		return model.Booking{}, lookupErr(err, "booking")
	}
	return b, nil
}

// List returns the customer's bookings. Upcoming restricts to pending or confirmed
// bookings from today on, soonest first.
func (s *Service) List(ctx context.Context, customerID string, upcoming bool) ([]model.Booking, error) {
	if customerID == "" {
		return nil, errs.New(errs.KindUnauthorized, "authentication required")
	}
	filter := model.BookingFilter{CustomerID: customerID, Limit: 200}
	if upcoming {
		filter.FromDate = s.today()
		filter.Statuses = []model.Status{model.StatusPending, model.StatusConfirmed}
	}
	out, err := s.store.ListBookings(ctx, filter)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return out, nil
}

// ListForDate is the admin day sheet.
func (s *Service) ListForDate(ctx context.Context, date string) ([]model.Booking, error) {
	if date == "" {
		date = s.today()
	}
	if _, err := availability.ParseDate(date, s.engine.Location()); err != nil {
		return nil, errs.Validation("date must be YYYY-MM-DD").Arg("date", date)
	}
	out, err := s.store.ListBookings(ctx, model.BookingFilter{Date: date, Limit: 500})
	if err != nil {
		return nil, errs.Internal(err)
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context) (model.DashboardStats, error) {
	st, err := s.store.Stats(ctx, s.today())
	if err != nil {
		return model.DashboardStats{}, errs.Internal(err)
	}
	return st, nil
}

func (s *Service) today() string {
	return s.now().In(s.engine.Location()).Format(availability.DateLayout)
}

func (s *Service) startInstant(b model.Booking) (time.Time, error) {
	day, err := availability.ParseDate(b.Date, s.engine.Location())
	if err != nil {
		return time.Time{}, err
	}
	m, err := availability.ClockToMinutes(b.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(m) * time.Minute), nil
}

func terminalErr(st model.Status) error {
	switch st {
	case model.StatusCancelled:
		return errs.New(errs.KindAlreadyCancelled, "booking is already cancelled")
	case model.StatusCompleted:
		return errs.New(errs.KindAlreadyCompleted, "cannot cancel a completed booking")
	}
	return nil
}

func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*10) / 10
}

func formatLead(d time.Duration) string {
	if d%time.Hour == 0 {
		if h := int(d / time.Hour); h != 1 {
			return fmt.Sprintf("%d hours", h)
		}
		return "1 hour"
	}
	return d.String()
}

func lookupErr(err error, what string) error {
	var e *errs.Error
	if errors.As(err, &e) {
		if e.Kind == errs.KindNotFound {
			return errs.NotFound(what)
		}
		return e
	}
	return errs.Internal(err)
}
