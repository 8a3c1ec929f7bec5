package availability

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/errs"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"go.opentelemetry.io/otel/attribute"
)

const (
	MessageNoStaff          = "No staff available"
	MessageStaffUnavailable = "Staff member is not available"
)

// Store is the read side the engine needs. Lookups of missing rows return an error
// matching errs.ErrNotFound.
type Store interface {
	GetService(ctx context.Context, id string) (model.Service, error)
	GetStaff(ctx context.Context, id string) (model.Staff, error)
	ListStaff(ctx context.Context, filter model.StaffFilter) ([]model.Staff, error)
	ListBookings(ctx context.Context, filter model.BookingFilter) ([]model.Booking, error)
}

type Engine struct {
	store    Store
	hours    BusinessHours
	taxonomy *catalog.Taxonomy
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func NewEngine(store Store, hours BusinessHours, taxonomy *catalog.Taxonomy, opts ...Option) *Engine {
	if taxonomy == nil {
		taxonomy = catalog.DefaultTaxonomy()
	}
	e := &Engine{
		store:    store,
		hours:    hours,
		taxonomy: taxonomy,
		loc:      time.Local,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Hours() BusinessHours        { return e.hours }
func (e *Engine) Location() *time.Location    { return e.loc }
func (e *Engine) Taxonomy() *catalog.Taxonomy { return e.taxonomy }

type SlotQuery struct {
	Date      string
	ServiceID string
	// StaffID empty (or "any") asks for slots served by any eligible staff member.
	StaffID string
}

func (q SlotQuery) AnyStaff() bool {
	s := strings.TrimSpace(q.StaffID)
	return s == "" || strings.EqualFold(s, "any")
}

type SlotResult struct {
	Date            string   `json:"date"`
	ServiceID       string   `json:"serviceId"`
	ServiceDuration int      `json:"serviceDuration"`
	StaffID         string   `json:"staffId,omitempty"`
	Slots           []string `json:"availableSlots"`
	TotalBookings   int      `json:"totalBookings"`
	TotalStaff      int      `json:"totalStaff"`
	Message         string   `json:"message,omitempty"`
}

// AvailableSlots lists the grid starts at which the service can be booked on q.Date,
// either with the named staff member or with at least one eligible one.
func (e *Engine) AvailableSlots(ctx context.Context, q SlotQuery) (res SlotResult, err error) {
	ctx, span := otelx.StartSpan(ctx, "availability.AvailableSlots",
		attribute.String("booking.date", q.Date),
		attribute.String("booking.service_id", q.ServiceID),
		attribute.String("booking.staff_id", q.StaffID),
	)
	defer func() { otelx.EndSpan(span, err) }()

	if err := requireFields(map[string]string{"date": q.Date, "serviceId": q.ServiceID}); err != nil {
		return SlotResult{}, err
	}
	day, err := ParseDate(q.Date, e.loc)
	if err != nil {
		return SlotResult{}, errs.Validation("date must be YYYY-MM-DD").Arg("date", q.Date)
	}

	svc, err := e.activeService(ctx, q.ServiceID)
	if err != nil {
		return SlotResult{}, err
	}

	res = SlotResult{
		Date:            q.Date,
		ServiceID:       svc.ID,
		ServiceDuration: svc.DurationMinutes,
		Slots:           []string{},
	}

	var staff []model.Staff
	if q.AnyStaff() {
		staff, err = e.eligibleStaff(ctx, svc.Category)
		if err != nil {
			return SlotResult{}, err
		}
	} else {
		member, err := e.store.GetStaff(ctx, q.StaffID)
		if err != nil {
			return SlotResult{}, lookupErr(err, "staff member")
		}
		res.StaffID = member.ID
		if !member.Available {
			res.Message = MessageStaffUnavailable
			return res, nil
		}
		staff = []model.Staff{member}
	}
	res.TotalStaff = len(staff)
	if len(staff) == 0 {
		res.Message = MessageNoStaff
		return res, nil
	}

	busy, total, err := e.busyByStaff(ctx, q.Date, staff, q.AnyStaff())
	if err != nil {
		return SlotResult{}, err
	}
	res.TotalBookings = total

	cutoff, ok := e.cutoff(day)
	if !ok {
		return res, nil
	}
	for _, slot := range e.hours.Grid() {
		if slot <= cutoff {
			continue
		}
		for _, member := range staff {
			if busy[member.ID].FitsAt(e.hours, slot, svc.DurationMinutes) {
				res.Slots = append(res.Slots, MinutesToClock(slot))
				break
			}
		}
	}
	span.SetAttributes(attribute.Int("availability.slots", len(res.Slots)))
	return res, nil
}

type StaffQuery struct {
	Date string
	Time string
	// ServiceID is optional; without it the default duration applies and no category
	// filter is used.
	ServiceID string
}

type StaffSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Specialization  string `json:"specialization"`
	Bio             string `json:"bio,omitempty"`
	ExperienceYears int    `json:"experience_years"`
}

type StaffResult struct {
	Date     string         `json:"date"`
	Time     string         `json:"time"`
	EndTime  string         `json:"endTime"`
	Duration int            `json:"duration"`
	Staff    []StaffSummary `json:"staff"`
	Message  string         `json:"message,omitempty"`
}

// AvailableStaff lists eligible staff who are free for [q.Time, q.Time+duration).
func (e *Engine) AvailableStaff(ctx context.Context, q StaffQuery) (res StaffResult, err error) {
	ctx, span := otelx.StartSpan(ctx, "availability.AvailableStaff",
		attribute.String("booking.date", q.Date),
		attribute.String("booking.time", q.Time),
		attribute.String("booking.service_id", q.ServiceID),
	)
	defer func() { otelx.EndSpan(span, err) }()

	if err := requireFields(map[string]string{"date": q.Date, "time": q.Time}); err != nil {
		return StaffResult{}, err
	}
	if _, err := ParseDate(q.Date, e.loc); err != nil {
		return StaffResult{}, errs.Validation("date must be YYYY-MM-DD").Arg("date", q.Date)
	}
	start, err := ClockToMinutes(q.Time)
	if err != nil {
		return StaffResult{}, errs.Validation("time must be HH:MM").Arg("time", q.Time)
	}

	duration := DefaultBookingDuration
	category := ""
	if strings.TrimSpace(q.ServiceID) != "" {
		svc, err := e.activeService(ctx, q.ServiceID)
		if err != nil {
			return StaffResult{}, err
		}
		duration = svc.DurationMinutes
		category = svc.Category
	}

	candidate := Interval{Start: start, End: start + duration}
	res = StaffResult{
		Date:     q.Date,
		Time:     MinutesToClock(start),
		EndTime:  MinutesToClock(candidate.End),
		Duration: duration,
		Staff:    []StaffSummary{},
	}

	staff, err := e.eligibleStaff(ctx, category)
	if err != nil {
		return StaffResult{}, err
	}
	if len(staff) == 0 {
		res.Message = MessageNoStaff
		return res, nil
	}

	busy, _, err := e.busyByStaff(ctx, q.Date, staff, false)
	if err != nil {
		return StaffResult{}, err
	}
	for _, member := range staff {
		if busy[member.ID].IsBusy(candidate) {
			continue
		}
		res.Staff = append(res.Staff, StaffSummary{
			ID:              member.ID,
			Name:            member.Name,
			Specialization:  member.Specialization,
			Bio:             member.Bio,
			ExperienceYears: member.ExperienceYears,
		})
	}
	if len(res.Staff) == 0 {
		res.Message = MessageNoStaff
	}
	return res, nil
}

// Conflicts is the authoritative check run right before a booking is written: it
// returns the blocking intervals of staffID on date that overlap candidate.
func (e *Engine) Conflicts(ctx context.Context, staffID, date string, candidate Interval) (conflicts []Interval, err error) {
	ctx, span := otelx.StartSpan(ctx, "availability.Conflicts",
		attribute.String("booking.date", date),
		attribute.String("booking.staff_id", staffID),
	)
	defer func() { otelx.EndSpan(span, err) }()

	bookings, err := e.store.ListBookings(ctx, model.BookingFilter{
		Date:     date,
		StaffIDs: []string{staffID},
		Statuses: []model.Status{model.StatusPending, model.StatusConfirmed},
	})
	if err != nil {
		return nil, errs.Internal(err)
	}
	busy, _ := BusyFrom(bookings)
	return busy.Conflicts(candidate), nil
}

// cutoff is the last start minute already past on day; ok is false when the whole
// day is in the past.
func (e *Engine) cutoff(day time.Time) (int, bool) {
	now := e.now().In(e.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.loc)
	switch {
	case day.Before(today):
		return 0, false
	case day.Equal(today):
		return now.Hour()*60 + now.Minute(), true
	default:
		return -1, true
	}
}

func (e *Engine) activeService(ctx context.Context, id string) (model.Service, error) {
	svc, err := e.store.GetService(ctx, id)
	if err != nil {
		return model.Service{}, lookupErr(err, "service")
	}
	if !svc.Active {
		return model.Service{}, errs.New(errs.KindServiceInactive, "service is not currently available").Arg("serviceId", id)
	}
	return svc, nil
}

func (e *Engine) eligibleStaff(ctx context.Context, category string) ([]model.Staff, error) {
	all, err := e.store.ListStaff(ctx, model.StaffFilter{AvailableOnly: true})
	if err != nil {
		return nil, errs.Internal(err)
	}
	out := make([]model.Staff, 0, len(all))
	for _, s := range all {
		if s.Available && e.taxonomy.Eligible(category, s.Specialization) {
			out = append(out, s)
		}
	}
	return out, nil
}

// busyByStaff groups the blocking bookings of date by staff member. With wholeDay set
// every blocking booking of the date is loaded and counted, including those without
// a staff member; otherwise only the given staff are queried.
func (e *Engine) busyByStaff(ctx context.Context, date string, staff []model.Staff, wholeDay bool) (map[string]Busy, int, error) {
	filter := model.BookingFilter{
		Date:     date,
		Statuses: []model.Status{model.StatusPending, model.StatusConfirmed},
	}
	if !wholeDay {
		filter.StaffIDs = make([]string, len(staff))
		for i, s := range staff {
			filter.StaffIDs[i] = s.ID
		}
	}
	bookings, err := e.store.ListBookings(ctx, filter)
	if err != nil {
		return nil, 0, errs.Internal(err)
	}

	grouped := map[string][]model.Booking{}
	for _, b := range bookings {
		if b.StaffID == "" {
			continue
		}
		grouped[b.StaffID] = append(grouped[b.StaffID], b)
	}
	busy := make(map[string]Busy, len(grouped))
	for id, list := range grouped {
		iv, skipped := BusyFrom(list)
		if skipped > 0 {
			e.logger.Warn("skipped bookings with malformed times", "staff_id", id, "date", date, "count", skipped)
		}
		busy[id] = iv
	}
	return busy, len(bookings), nil
}

func requireFields(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return errs.Missing(missing...)
}

func lookupErr(err error, what string) error {
	if errors.Is(err, errs.ErrNotFound) {
		return errs.NotFound(what)
	}
	return errs.Internal(err)
}
