package storage

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/errs"
)

const (
	codeExclusionViolation = "23P01"
	codeUniqueViolation    = "23505"
	codeForeignKey         = "23503"
	codeInvalidText        = "22P02"

	constraintIdempotency = "bookings_idempotency_key_idx"
)

func isConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeExclusionViolation
}

func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// translate maps driver errors onto domain errors; anything else is returned as is.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return errs.NotFound(what)
	}
	if isConflict(err) {
		return errs.New(errs.KindSlotConflict, "time slot already booked").Wrap(err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		if pgErr.ConstraintName == constraintIdempotency {
			return errs.ErrDuplicateRequest
		}
	case codeForeignKey:
		return errs.Validation("referenced record does not exist").Arg("constraint", pgErr.ConstraintName).Wrap(err)
	case codeInvalidText:
		return errs.NotFound(what)
	}
	return err
}

// validID rejects ids that cannot be UUIDs before they reach the database.
func validID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errs.NotFound(what)
	}
	return nil
}
