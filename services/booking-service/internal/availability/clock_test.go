package availability

import (
	"errors"
	"math/rand"
	"testing"
)

func TestClockToMinutes(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"09:00": 540,
		"9:30":  570,
		"14:05": 845,
		"23:59": 1439,
	}
	for in, want := range cases {
		got, err := ClockToMinutes(in)
		if err != nil || got != want {
			t.Fatalf("ClockToMinutes(%q) = %d, %v; want %d", in, got, err, want)
		}
	}

	for _, bad := range []string{"", "9", "09-00", "ab:cd", "24:00", "12:60", "12:5", "1:2:3", "-1:00", "123:00"} {
		if _, err := ClockToMinutes(bad); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("ClockToMinutes(%q): expected ErrInvalidFormat, got %v", bad, err)
		}
	}
}

func TestMinutesToClockAndAdd(t *testing.T) {
	if got := MinutesToClock(545); got != "09:05" {
		t.Fatalf("expected 09:05, got %s", got)
	}
	got, err := AddMinutes("14:00", 90)
	if err != nil || got != "15:30" {
		t.Fatalf("AddMinutes = %s, %v", got, err)
	}
	for m := 0; m < 24*60; m += 7 {
		back, err := ClockToMinutes(MinutesToClock(m))
		if err != nil || back != m {
			t.Fatalf("round trip of %d gave %d, %v", m, back, err)
		}
	}
}

func TestOverlaps_TouchingDoesNotConflict(t *testing.T) {
	if Overlaps(540, 600, 600, 660) {
		t.Fatalf("09:00-10:00 and 10:00-11:00 must not overlap")
	}
	if !Overlaps(540, 601, 600, 660) {
		t.Fatalf("one minute of overlap must conflict")
	}
}

// Generated interval pairs agree with a minute-by-minute occupancy check.
func TestOverlaps_MatchesOccupancy(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		sA := rng.Intn(600)
		eA := sA + 1 + rng.Intn(180)
		sB := rng.Intn(600)
		eB := sB + 1 + rng.Intn(180)

		shared := false
		for m := sA; m < eA; m++ {
			if m >= sB && m < eB {
				shared = true
				break
			}
		}
		if got := Overlaps(sA, eA, sB, eB); got != shared {
			t.Fatalf("Overlaps(%d,%d,%d,%d) = %v, occupancy says %v", sA, eA, sB, eB, got, shared)
		}
		if Overlaps(sA, eA, sB, eB) != Overlaps(sB, eB, sA, eA) {
			t.Fatalf("overlap must be symmetric")
		}
	}
}
