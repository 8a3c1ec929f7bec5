package booking

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/outbox"
)

// Store is the persistence the workflows need. Missing rows are reported with an error
// matching errs.ErrNotFound.
type Store interface {
	GetService(ctx context.Context, id string) (model.Service, error)
	GetStaff(ctx context.Context, id string) (model.Staff, error)

	// InsertBooking writes b and evt atomically. An overlapping blocking booking for the
	// same staff member yields errs.ErrSlotConflict; a reused idempotency key yields
	// errs.ErrDuplicateRequest.
	InsertBooking(ctx context.Context, b model.Booking, evt outbox.Event) (model.Booking, error)
	FindByIdempotencyKey(ctx context.Context, customerID, key string) (model.Booking, error)

	// GetBooking loads one booking; a non-empty customerID scopes the lookup to that customer.
	GetBooking(ctx context.Context, id, customerID string) (model.Booking, error)
	ListBookings(ctx context.Context, filter model.BookingFilter) ([]model.Booking, error)

	// TransitionStatus applies t only while the booking is still in one of t.From.
	// applied is false when the row exists but its status no longer matched.
	TransitionStatus(ctx context.Context, t Transition, evt outbox.Event) (b model.Booking, applied bool, err error)

	UpdateCustomerContact(ctx context.Context, c model.CustomerContact) error
	Stats(ctx context.Context, today string) (model.DashboardStats, error)
}

type Transition struct {
	BookingID  string
	CustomerID string
	From       []model.Status
	To         model.Status
	At         time.Time
	// Reason is stored as cancel_reason when To is cancelled.
	Reason string
}

// DateInvalidator drops cached availability for one date.
type DateInvalidator interface {
	InvalidateDate(ctx context.Context, date string) error
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateDate(context.Context, string) error { return nil }
