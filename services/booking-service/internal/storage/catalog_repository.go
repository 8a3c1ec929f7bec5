package storage

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type CatalogRepository struct {
	pool *db.Pool
}

func NewCatalogRepository(pool *db.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

const serviceColumns = `id::text, name, description, category, duration, price::text, is_active, created_at, updated_at`

func scanService(row pgx.Row) (model.Service, error) {
	var s model.Service
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Category, &s.DurationMinutes, &s.Price, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *CatalogRepository) GetService(ctx context.Context, id string) (model.Service, error) {
	if err := validID(id, "service"); err != nil {
		return model.Service{}, err
	}
	s, err := scanService(r.pool.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	return s, translate(err, "service")
}

func (r *CatalogRepository) ListServices(ctx context.Context, filter model.ServiceFilter) ([]model.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE true`
	var args []any
	if filter.ActiveOnly {
		query += ` AND is_active`
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		args = append(args, c)
		query += ` AND lower(category) = lower($` + strconv.Itoa(len(args)) + `)`
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := strconv.Itoa(len(args))
		query += ` AND (name ILIKE $` + n + ` OR description ILIKE $` + n + `)`
	}
	query += ` ORDER BY category, name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Service, error) {
		return scanService(row)
	})
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM services WHERE is_active ORDER BY category`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *CatalogRepository) CreateService(ctx context.Context, s model.Service) (model.Service, error) {
	out, err := scanService(r.pool.QueryRow(ctx, `
		INSERT INTO services (id, name, description, category, duration, price, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, now(), now())
		RETURNING `+serviceColumns,
		s.ID, s.Name, s.Description, s.Category, s.DurationMinutes, s.Price, s.Active))
	return out, translate(err, "service")
}

func (r *CatalogRepository) UpdateService(ctx context.Context, s model.Service) (model.Service, error) {
	if err := validID(s.ID, "service"); err != nil {
		return model.Service{}, err
	}
	out, err := scanService(r.pool.QueryRow(ctx, `
		UPDATE services
		SET name = $2, description = $3, category = $4, duration = $5, price = $6::numeric, is_active = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+serviceColumns,
		s.ID, s.Name, s.Description, s.Category, s.DurationMinutes, s.Price, s.Active))
	return out, translate(err, "service")
}

func (r *CatalogRepository) SetServiceActive(ctx context.Context, id string, active bool) (model.Service, error) {
	if err := validID(id, "service"); err != nil {
		return model.Service{}, err
	}
	out, err := scanService(r.pool.QueryRow(ctx, `
		UPDATE services SET is_active = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+serviceColumns, id, active))
	return out, translate(err, "service")
}

const staffColumns = `id::text, name, specialization, bio, experience_years, is_available, created_at`

func scanStaff(row pgx.Row) (model.Staff, error) {
	var s model.Staff
	err := row.Scan(&s.ID, &s.Name, &s.Specialization, &s.Bio, &s.ExperienceYears, &s.Available, &s.CreatedAt)
	return s, err
}

func (r *CatalogRepository) GetStaff(ctx context.Context, id string) (model.Staff, error) {
	if err := validID(id, "staff member"); err != nil {
		return model.Staff{}, err
	}
	s, err := scanStaff(r.pool.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id))
	return s, translate(err, "staff member")
}

func (r *CatalogRepository) ListStaff(ctx context.Context, filter model.StaffFilter) ([]model.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff`
	if filter.AvailableOnly {
		query += ` WHERE is_available`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Staff, error) {
		return scanStaff(row)
	})
}

func (r *CatalogRepository) CreateStaff(ctx context.Context, s model.Staff) (model.Staff, error) {
	out, err := scanStaff(r.pool.QueryRow(ctx, `
		INSERT INTO staff (id, name, specialization, bio, experience_years, is_available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING `+staffColumns,
		s.ID, s.Name, s.Specialization, s.Bio, s.ExperienceYears, s.Available))
	return out, translate(err, "staff member")
}

func (r *CatalogRepository) SetStaffAvailable(ctx context.Context, id string, available bool) (model.Staff, error) {
	if err := validID(id, "staff member"); err != nil {
		return model.Staff{}, err
	}
	out, err := scanStaff(r.pool.QueryRow(ctx, `
		UPDATE staff SET is_available = $2
		WHERE id = $1
		RETURNING `+staffColumns, id, available))
	return out, translate(err, "staff member")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
