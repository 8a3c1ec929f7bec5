package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("create booking: %w", New(KindSlotConflict, "time slot already booked").Arg("conflicts", 1))
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected errors.Is to match slot conflict")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("kinds must not cross-match")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:        http.StatusBadRequest,
		KindUnauthorized:      http.StatusUnauthorized,
		KindNotFound:          http.StatusNotFound,
		KindServiceInactive:   http.StatusBadRequest,
		KindSlotConflict:      http.StatusConflict,
		KindTooLateToCancel:   http.StatusBadRequest,
		KindInvalidTransition: http.StatusConflict,
		KindInternal:          http.StatusInternalServerError,
		Kind("unknown"):       http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := New(kind, "x").HTTPStatus(); got != want {
			t.Fatalf("%s: expected %d, got %d", kind, want, got)
		}
	}
}

func TestFromWrapsUnknownErrorsAsInternal(t *testing.T) {
	cause := errors.New("connection reset")
	e := From(cause)
	if e.Kind != KindInternal {
		t.Fatalf("expected internal kind, got %s", e.Kind)
	}
	if !errors.Is(e, cause) {
		t.Fatalf("expected cause to stay reachable")
	}

	typed := NotFound("booking")
	if From(fmt.Errorf("wrapped: %w", typed)) != typed {
		t.Fatalf("expected typed error to be returned as is")
	}
}

func TestErrorString(t *testing.T) {
	e := New(KindTooLateToCancel, "cannot cancel within 2 hours").Arg("hoursRemaining", 1.5)
	if got := e.Error(); !strings.Contains(got, "too_late_to_cancel") || !strings.Contains(got, "hoursRemaining=1.5") {
		t.Fatalf("unexpected error string: %s", got)
	}
}

func TestMissing(t *testing.T) {
	e := Missing("serviceId", "date")
	fields, ok := e.Args["missingFields"].(map[string]bool)
	if !ok || !fields["serviceId"] || !fields["date"] || len(fields) != 2 {
		t.Fatalf("unexpected missing fields: %#v", e.Args)
	}
}
