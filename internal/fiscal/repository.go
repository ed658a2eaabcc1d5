package fiscal

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merobill/merobill/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (Year, error)
	ListByCompany(ctx context.Context, companyID int64) ([]Year, error)
	CurrentForCompany(ctx context.Context, companyID int64) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (Year, error) {
	var y Year
	err := r.pool.QueryRow(ctx,
		`SELECT id, company_id, name, start_date, end_date, date_format, is_active
		 FROM fiscal_years WHERE id = $1`, id).
		Scan(&y.ID, &y.CompanyID, &y.Name, &y.StartDate, &y.EndDate, &y.DateFormat, &y.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return Year{}, shared.ErrNotFound
	}
	if err != nil {
		return Year{}, err
	}
	return y, nil
}

func (r *repository) ListByCompany(ctx context.Context, companyID int64) ([]Year, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, company_id, name, start_date, end_date, date_format, is_active
		 FROM fiscal_years WHERE company_id = $1 ORDER BY start_date DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []Year
	for rows.Next() {
		var y Year
		if err := rows.Scan(&y.ID, &y.CompanyID, &y.Name, &y.StartDate, &y.EndDate, &y.DateFormat, &y.IsActive); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// CurrentForCompany returns the company's configured current fiscal year id,
// zero when the company has none linked.
func (r *repository) CurrentForCompany(ctx context.Context, companyID int64) (int64, error) {
	var id *int64
	err := r.pool.QueryRow(ctx,
		`SELECT current_fiscal_year_id FROM companies WHERE id = $1`, companyID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, shared.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, nil
	}
	return *id, nil
}
