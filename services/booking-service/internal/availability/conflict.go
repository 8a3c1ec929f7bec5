package availability

import "github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"

// DefaultBookingDuration applies to existing bookings whose duration is unknown.
const DefaultBookingDuration = 60

// BookingInterval derives the occupied interval of an existing booking from its own
// start time and snapshot duration.
func BookingInterval(b model.Booking) (Interval, error) {
	start, err := ClockToMinutes(b.StartTime)
	if err != nil {
		return Interval{}, err
	}
	d := b.DurationMinutes
	if d <= 0 {
		d = DefaultBookingDuration
	}
	return Interval{Start: start, End: start + d}, nil
}

// Busy holds the occupied intervals of one staff member on one date.
type Busy []Interval

// BusyFrom collects the intervals of blocking bookings. Bookings with unparseable
// times are skipped and counted.
func BusyFrom(bookings []model.Booking) (Busy, int) {
	var (
		busy    Busy
		skipped int
	)
	for _, b := range bookings {
		if !b.Status.Blocking() {
			continue
		}
		iv, err := BookingInterval(b)
		if err != nil {
			skipped++
			continue
		}
		busy = append(busy, iv)
	}
	return busy, skipped
}

// Conflicts returns every busy interval that overlaps candidate, in input order.
func (b Busy) Conflicts(candidate Interval) []Interval {
	var out []Interval
	for _, iv := range b {
		if iv.Overlaps(candidate) {
			out = append(out, iv)
		}
	}
	return out
}

func (b Busy) IsBusy(candidate Interval) bool {
	for _, iv := range b {
		if iv.Overlaps(candidate) {
			return true
		}
	}
	return false
}

// FitsAt reports whether a service of duration can start at slot: every grid cell it
// spans must exist in the grid and be free.
func (b Busy) FitsAt(h BusinessHours, slot, duration int) bool {
	cells := h.Cells(duration)
	for i := 0; i < cells; i++ {
		cell := slot + i*h.Step
		if !h.OnGrid(cell) {
			return false
		}
		if b.IsBusy(Interval{Start: cell, End: cell + h.Step}) {
			return false
		}
	}
	return true
}
