package availability

import "fmt"

// BusinessHours describes the bookable day: candidate starts from Open every Step
// minutes while start+Step still fits before Close.
type BusinessHours struct {
	Open  int
	Close int
	Step  int
}

func DefaultBusinessHours() BusinessHours {
	return BusinessHours{Open: 9 * 60, Close: 21 * 60, Step: 60}
}

func NewBusinessHours(open, close string, step int) (BusinessHours, error) {
	o, err := ClockToMinutes(open)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("business open: %w", err)
	}
	c, err := ClockToMinutes(close)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("business close: %w", err)
	}
	h := BusinessHours{Open: o, Close: c, Step: step}
	if err := h.Validate(); err != nil {
		return BusinessHours{}, err
	}
	return h, nil
}

func (h BusinessHours) Validate() error {
	if h.Step <= 0 {
		return fmt.Errorf("slot step must be positive, got %d", h.Step)
	}
	if h.Open+h.Step > h.Close {
		return fmt.Errorf("business hours %s-%s hold no %d minute slot", MinutesToClock(h.Open), MinutesToClock(h.Close), h.Step)
	}
	return nil
}

// Grid returns the ordered candidate start minutes for one day.
func (h BusinessHours) Grid() []int {
	if h.Step <= 0 {
		return nil
	}
	var out []int
	for start := h.Open; start+h.Step <= h.Close; start += h.Step {
		out = append(out, start)
	}
	return out
}

func (h BusinessHours) gridClocks() []string {
	grid := h.Grid()
	out := make([]string, len(grid))
	for i, m := range grid {
		out[i] = MinutesToClock(m)
	}
	return out
}

// Cells is the number of consecutive grid cells a service of duration occupies.
func (h BusinessHours) Cells(duration int) int {
	if duration <= 0 || h.Step <= 0 {
		return 1
	}
	return (duration + h.Step - 1) / h.Step
}

// Within reports whether [start,end) lies inside opening hours.
func (h BusinessHours) Within(start, end int) bool {
	return start >= h.Open && end <= h.Close && start < end
}

// OnGrid reports whether start is one of the grid's candidate starts.
func (h BusinessHours) OnGrid(start int) bool {
	if h.Step <= 0 || start < h.Open || start+h.Step > h.Close {
		return false
	}
	return (start-h.Open)%h.Step == 0
}
