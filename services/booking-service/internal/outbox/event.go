package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

// Topic names; the Kafka topic equals the event type.
const (
	EventBookingCreated       = "booking.created.v1"
	EventBookingCancelled     = "booking.cancelled.v1"
	EventBookingStatusChanged = "booking.status_changed.v1"

	AggregateBooking = "booking"
)

// Event is the envelope written to outbox_events in the same transaction as the
// change it describes.
type Event struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type BookingPayload struct {
	EventID        string       `json:"event_id"`
	BookingID      string       `json:"booking_id"`
	CustomerID     string       `json:"customer_id"`
	ServiceID      string       `json:"service_id"`
	StaffID        string       `json:"staff_id,omitempty"`
	Date           string       `json:"booking_date"`
	StartTime      string       `json:"start_time"`
	EndTime        string       `json:"end_time"`
	Status         model.Status `json:"status"`
	PreviousStatus model.Status `json:"previous_status,omitempty"`
	TotalPrice     string       `json:"total_price"`
	CancelReason   string       `json:"cancel_reason,omitempty"`
	OccurredAt     time.Time    `json:"occurred_at"`
}

// NewBookingEvent snapshots b into an event of eventType. previous is the status before
// the change, empty for creations.
func NewBookingEvent(eventType string, b model.Booking, previous model.Status, at time.Time) (Event, error) {
	id := uuid.NewString()
	payload, err := json.Marshal(BookingPayload{
		EventID:        id,
		BookingID:      b.ID,
		CustomerID:     b.CustomerID,
		ServiceID:      b.ServiceID,
		StaffID:        b.StaffID,
		Date:           b.Date,
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		Status:         b.Status,
		PreviousStatus: previous,
		TotalPrice:     b.TotalPrice,
		CancelReason:   b.CancelReason,
		OccurredAt:     at.UTC(),
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:            id,
		AggregateType: AggregateBooking,
		AggregateID:   b.ID,
		EventType:     eventType,
		Payload:       payload,
	}, nil
}

// TransitionEventType picks the topic for a status change.
func TransitionEventType(to model.Status) string {
	if to == model.StatusCancelled {
		return EventBookingCancelled
	}
	return EventBookingStatusChanged
}
