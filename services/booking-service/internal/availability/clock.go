// Package availability is the single place that decides which times can be booked: clock
// arithmetic, the business-day slot grid, the conflict checker and the engine that
// combines them with stored bookings.
package availability

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidFormat = errors.New("invalid clock format")

const DateLayout = "2006-01-02"

// ClockToMinutes parses "HH:MM" into minutes after midnight.
func ClockToMinutes(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 || parts[0] == "" || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, clock)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidFormat, clock)
	}
	return h*60 + m, nil
}

// MinutesToClock formats minutes after midnight as zero-padded "HH:MM". Values past
// midnight are not wrapped.
func MinutesToClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func AddMinutes(clock string, delta int) (string, error) {
	m, err := ClockToMinutes(clock)
	if err != nil {
		return "", err
	}
	return MinutesToClock(m + delta), nil
}

// Overlaps reports whether [startA,endA) and [startB,endB) intersect. Touching
// endpoints do not overlap.
func Overlaps(startA, endA, startB, endB int) bool {
	return startA < endB && endA > startB
}

// ParseDate parses a YYYY-MM-DD calendar date in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
}

// Interval is a half-open range of minutes after midnight on one date.
type Interval struct {
	Start int
	End   int
}

func (iv Interval) Overlaps(other Interval) bool {
	return Overlaps(iv.Start, iv.End, other.Start, other.End)
}

// ClockInterval is the wire form of an Interval.
type ClockInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (iv Interval) Clock() ClockInterval {
	return ClockInterval{Start: MinutesToClock(iv.Start), End: MinutesToClock(iv.End)}
}
