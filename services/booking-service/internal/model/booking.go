package model

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

// Blocking reports whether a booking in this status occupies its staff member's time.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransition allows pending→confirmed and pending|confirmed→completed|cancelled.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCompleted || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

// Booking is one appointment. Dates are YYYY-MM-DD and times HH:MM in the salon's
// local timezone. An empty StaffID means any available staff member.
type Booking struct {
	ID              string     `json:"id"`
	CustomerID      string     `json:"customer_id"`
	ServiceID       string     `json:"service_id"`
	StaffID         string     `json:"staff_id,omitempty"`
	Date            string     `json:"booking_date"`
	StartTime       string     `json:"start_time"`
	EndTime         string     `json:"end_time"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          Status     `json:"status"`
	TotalPrice      string     `json:"total_price"`
	Notes           string     `json:"notes,omitempty"`
	CancelReason    string     `json:"cancel_reason,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	IdempotencyKey  string     `json:"-"`

	// Display fields joined from services, staff and profiles.
	ServiceName   string `json:"service_name,omitempty"`
	StaffName     string `json:"staff_name,omitempty"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
}

type BookingFilter struct {
	CustomerID string
	Date       string
	StaffIDs   []string
	Statuses   []Status
	// FromDate restricts to bookings on or after this date.
	FromDate string
	Limit    int
}

type DashboardStats struct {
	TotalBookings   int `json:"total_bookings"`
	PendingBookings int `json:"pending_bookings"`
	ConfirmedToday  int `json:"confirmed_today"`
	TotalCustomers  int `json:"total_customers"`
	ActiveServices  int `json:"active_services"`
}
