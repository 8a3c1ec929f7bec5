package storage

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/outbox"
)

type BookingRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewBookingRepository(pool *db.Pool, outboxRepo *outbox.Repository) *BookingRepository {
	return &BookingRepository{pool: pool, outbox: outboxRepo}
}

const bookingSelect = `
	SELECT b.id::text, b.customer_id, b.service_id::text, COALESCE(b.staff_id::text, ''),
		b.booking_date::text, to_char(b.start_time, 'HH24:MI'), to_char(b.end_time, 'HH24:MI'),
		b.duration_minutes, b.status, b.total_price::text, COALESCE(b.notes, ''),
		COALESCE(b.cancel_reason, ''), b.cancelled_at, b.created_at, b.updated_at,
		COALESCE(b.idempotency_key, ''),
		s.name, COALESCE(st.name, ''), COALESCE(p.full_name, ''), COALESCE(p.phone, '')
	FROM bookings b
	JOIN services s ON s.id = b.service_id
	LEFT JOIN staff st ON st.id = b.staff_id
	LEFT JOIN profiles p ON p.id = b.customer_id`

func scanBooking(row pgx.Row) (model.Booking, error) {
	var (
		b           model.Booking
		status      string
		cancelledAt *time.Time
	)
	err := row.Scan(
		&b.ID,
		&b.CustomerID,
		&b.ServiceID,
		&b.StaffID,
		&b.Date,
		&b.StartTime,
		&b.EndTime,
		&b.DurationMinutes,
		&status,
		&b.TotalPrice,
		&b.Notes,
		&b.CancelReason,
		&cancelledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.IdempotencyKey,
		&b.ServiceName,
		&b.StaffName,
		&b.CustomerName,
		&b.CustomerPhone,
	)
	if err != nil {
		return model.Booking{}, err
	}
	b.Status = model.Status(status)
	b.CancelledAt = cancelledAt
	return b, nil
}

// InsertBooking writes the booking and its outbox event in one transaction. The
// bookings_no_overlap exclusion constraint rejects a concurrent overlapping insert.
func (r *BookingRepository) InsertBooking(ctx context.Context, b model.Booking, evt outbox.Event) (model.Booking, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Booking{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings
			(id, customer_id, service_id, staff_id, booking_date, start_time, end_time, duration_minutes,
			 status, total_price, notes, idempotency_key, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5::date, $6::time, $7::time, $8,
			$9, $10::numeric, NULLIF($11, ''), NULLIF($12, ''), $13, $13)
	`, b.ID, b.CustomerID, b.ServiceID, b.StaffID, b.Date, b.StartTime, b.EndTime, b.DurationMinutes,
		string(b.Status), b.TotalPrice, b.Notes, b.IdempotencyKey, b.CreatedAt)
	if err != nil {
		return model.Booking{}, translate(err, "booking")
	}
	if err := r.outbox.Insert(ctx, tx, evt); err != nil {
		return model.Booking{}, err
	}

	saved, err := scanBooking(tx.QueryRow(ctx, bookingSelect+` WHERE b.id = $1`, b.ID))
	if err != nil {
		return model.Booking{}, translate(err, "booking")
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Booking{}, translate(err, "booking")
	}
	return saved, nil
}

func (r *BookingRepository) FindByIdempotencyKey(ctx context.Context, customerID, key string) (model.Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx, bookingSelect+`
		WHERE b.customer_id = $1 AND b.idempotency_key = $2`, customerID, key))
	return b, translate(err, "booking")
}

func (r *BookingRepository) GetBooking(ctx context.Context, id, customerID string) (model.Booking, error) {
	if err := validID(id, "booking"); err != nil {
		return model.Booking{}, err
	}
	query := bookingSelect + ` WHERE b.id = $1`
	args := []any{id}
	if customerID != "" {
		query += ` AND b.customer_id = $2`
		args = append(args, customerID)
	}
	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	return b, translate(err, "booking")
}

// ListBookings orders soonest first when FromDate is set and newest first otherwise.
func (r *BookingRepository) ListBookings(ctx context.Context, filter model.BookingFilter) ([]model.Booking, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.CustomerID != "" {
		where = append(where, "b.customer_id = "+arg(filter.CustomerID))
	}
	if filter.Date != "" {
		where = append(where, "b.booking_date = "+arg(filter.Date)+"::date")
	}
	if filter.FromDate != "" {
		where = append(where, "b.booking_date >= "+arg(filter.FromDate)+"::date")
	}
	if len(filter.StaffIDs) > 0 {
		where = append(where, "b.staff_id::text = ANY("+arg(filter.StaffIDs)+")")
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, "b.status = ANY("+arg(statuses)+")")
	}

	query := bookingSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.FromDate != "" || filter.Date != "" {
		query += " ORDER BY b.booking_date ASC, b.start_time ASC"
	} else {
		query += " ORDER BY b.booking_date DESC, b.start_time DESC"
	}
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Booking, error) {
		return scanBooking(row)
	})
}

// TransitionStatus updates the row only while its status is one of t.From, so a
// repeated cancel never rewrites cancelled_at.
func (r *BookingRepository) TransitionStatus(ctx context.Context, t booking.Transition, evt outbox.Event) (model.Booking, bool, error) {
	if err := validID(t.BookingID, "booking"); err != nil {
		return model.Booking{}, false, err
	}
	from := make([]string, len(t.From))
	for i, s := range t.From {
		from[i] = string(s)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Booking{}, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE bookings
		SET status = $3,
			updated_at = $4,
			cancelled_at = CASE WHEN $3 = 'cancelled' THEN $4 ELSE cancelled_at END,
			cancel_reason = CASE WHEN $3 = 'cancelled' THEN NULLIF($5, '') ELSE cancel_reason END
		WHERE id = $1
			AND ($2 = '' OR customer_id = $2)
			AND status = ANY($6)
	`, t.BookingID, t.CustomerID, string(t.To), t.At, t.Reason, from)
	if err != nil {
		return model.Booking{}, false, translate(err, "booking")
	}
	if tag.RowsAffected() == 0 {
		return model.Booking{}, false, nil
	}
	if err := r.outbox.Insert(ctx, tx, evt); err != nil {
		return model.Booking{}, false, err
	}

	b, err := scanBooking(tx.QueryRow(ctx, bookingSelect+` WHERE b.id = $1`, t.BookingID))
	if err != nil {
		return model.Booking{}, false, translate(err, "booking")
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Booking{}, false, err
	}
	return b, true, nil
}

// UpdateCustomerContact upserts the profile's name and phone, touching the row only
// when something changed.
func (r *BookingRepository) UpdateCustomerContact(ctx context.Context, c model.CustomerContact) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (id, full_name, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET full_name = EXCLUDED.full_name, phone = EXCLUDED.phone, updated_at = now()
		WHERE profiles.full_name IS DISTINCT FROM EXCLUDED.full_name
			OR profiles.phone IS DISTINCT FROM EXCLUDED.phone
	`, c.CustomerID, c.Name, c.Phone)
	return err
}

func (r *BookingRepository) Stats(ctx context.Context, today string) (model.DashboardStats, error) {
	var st model.DashboardStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM bookings),
			(SELECT count(*) FROM bookings WHERE status = 'pending'),
			(SELECT count(*) FROM bookings WHERE status = 'confirmed' AND booking_date = $1::date),
			(SELECT count(DISTINCT customer_id) FROM bookings),
			(SELECT count(*) FROM services WHERE is_active)
	`, today).Scan(&st.TotalBookings, &st.PendingBookings, &st.ConfirmedToday, &st.TotalCustomers, &st.ActiveServices)
	return st, err
}

// Store satisfies every repository interface the service layer consumes.
type Store struct {
	*CatalogRepository
	*BookingRepository
}

func NewStore(pool *db.Pool) *Store {
	return &Store{
		CatalogRepository: NewCatalogRepository(pool),
		BookingRepository: NewBookingRepository(pool, outbox.NewRepository()),
	}
}
