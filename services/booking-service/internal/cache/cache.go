// Package cache keeps computed availability per date so repeated slot queries skip the
// database. Entries are dropped whenever a booking on that date is created or changes
// status, and wholesale when the catalogue changes.
package cache

import (
	"context"
	"strings"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
)

type SlotCache interface {
	Get(ctx context.Context, q availability.SlotQuery) (availability.SlotResult, bool, error)
	Put(ctx context.Context, q availability.SlotQuery, res availability.SlotResult) error
	InvalidateDate(ctx context.Context, date string) error
	Purge(ctx context.Context) error
}

// field identifies a query within its date.
func field(q availability.SlotQuery) string {
	staff := strings.TrimSpace(q.StaffID)
	if q.AnyStaff() {
		staff = "any"
	}
	return q.ServiceID + ":" + staff
}
