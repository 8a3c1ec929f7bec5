// Package errs holds the booking domain errors. Each error has a Kind that fixes its
// HTTP status, a human message, and structured args rendered into the response body.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindServiceInactive   Kind = "service_inactive"
	KindStaffUnavailable  Kind = "staff_unavailable"
	KindSlotConflict      Kind = "slot_conflict"
	KindAlreadyCancelled  Kind = "already_cancelled"
	KindAlreadyCompleted  Kind = "already_completed"
	KindTooLateToCancel   Kind = "too_late_to_cancel"
	KindInvalidTransition Kind = "invalid_transition"
	KindInternal          Kind = "internal_error"
)

var statusByKind = map[Kind]int{
	KindValidation:        http.StatusBadRequest,
	KindUnauthorized:      http.StatusUnauthorized,
	KindForbidden:         http.StatusForbidden,
	KindNotFound:          http.StatusNotFound,
	KindServiceInactive:   http.StatusBadRequest,
	KindStaffUnavailable:  http.StatusBadRequest,
	KindSlotConflict:      http.StatusConflict,
	KindAlreadyCancelled:  http.StatusBadRequest,
	KindAlreadyCompleted:  http.StatusBadRequest,
	KindTooLateToCancel:   http.StatusBadRequest,
	KindInvalidTransition: http.StatusConflict,
	KindInternal:          http.StatusInternalServerError,
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrServiceInactive   = &Error{Kind: KindServiceInactive}
	ErrStaffUnavailable  = &Error{Kind: KindStaffUnavailable}
	ErrSlotConflict      = &Error{Kind: KindSlotConflict}
	ErrAlreadyCancelled  = &Error{Kind: KindAlreadyCancelled}
	ErrAlreadyCompleted  = &Error{Kind: KindAlreadyCompleted}
	ErrTooLateToCancel   = &Error{Kind: KindTooLateToCancel}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrInternal          = &Error{Kind: KindInternal}
)

// ErrDuplicateRequest reports a create retried with an idempotency key already used by
// the same customer. It never reaches clients.
var ErrDuplicateRequest = errors.New("duplicate idempotency key")

type Error struct {
	Kind    Kind
	Message string
	Args    map[string]any
	wrapped error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Args: map[string]any{}}
}

func Newf(kind Kind, format string, a ...any) *Error {
	return New(kind, fmt.Sprintf(format, a...))
}

// Arg attaches a structured detail rendered alongside the message.
func (e *Error) Arg(key string, value any) *Error {
	if e.Args == nil {
		e.Args = map[string]any{}
	}
	e.Args[key] = value
	return e
}

func (e *Error) Wrap(err error) *Error {
	if err != nil {
		e.wrapped = err
	}
	return e
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Args) > 0 {
		keys := make([]string, 0, len(e.Args))
		for k := range e.Args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Args[k])
		}
		b.WriteString(")")
	}
	if e.wrapped != nil {
		b.WriteString(": ")
		b.WriteString(e.wrapped.Error())
	}
	return b.String()
}

func (e *Error) HTTPStatus() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// From returns err as an *Error, classifying anything unknown as internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return New(KindInternal, "internal server error").Wrap(err)
}

func Validation(message string) *Error { return New(KindValidation, message) }

func NotFound(what string) *Error {
	return Newf(KindNotFound, "%s not found", what)
}

// Missing reports required fields that were absent from a request.
func Missing(fields ...string) *Error {
	missing := make(map[string]bool, len(fields))
	for _, f := range fields {
		missing[f] = true
	}
	return New(KindValidation, "missing required fields").Arg("missingFields", missing)
}

func Internal(err error) *Error {
	return New(KindInternal, "internal server error").Wrap(err)
}
