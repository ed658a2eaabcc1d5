package units

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	mdshared "github.com/merobill/merobill/internal/masterdata/shared"
	"github.com/merobill/merobill/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters mdshared.ListFilters) ([]Unit, int, error)
	Get(ctx context.Context, companyID, id int64) (Unit, error)
	Create(ctx context.Context, unit Unit) (Unit, error)
	Update(ctx context.Context, unit Unit) error
	Delete(ctx context.Context, companyID, id int64) error
	// CountItemsUsing reports how many items reference the unit; deletes are
	// pre-checked against it.
	CountItemsUsing(ctx context.Context, companyID, id int64) (int, error)

	ListMain(ctx context.Context, filters mdshared.ListFilters) ([]MainUnit, int, error)
	CreateMain(ctx context.Context, mu MainUnit) (MainUnit, error)
	DeleteMain(ctx context.Context, companyID, id int64) error
	CountUnitsUsingMain(ctx context.Context, companyID, id int64) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Unit, int, error) {
	query := `SELECT id, company_id, name, main_unit_id, factor FROM units WHERE company_id = $1`
	countQuery := `SELECT COUNT(*) FROM units WHERE company_id = $1`
	args := []any{filters.CompanyID}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := ` AND name ILIKE $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name`
	args = append(args, filters.Limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))
	args = append(args, filters.Offset())
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.CompanyID, &u.Name, &u.MainUnitID, &u.Factor); err != nil {
			return nil, 0, err
		}
		units = append(units, u)
	}
	return units, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Unit, error) {
	var u Unit
	err := r.pool.QueryRow(ctx,
		`SELECT id, company_id, name, main_unit_id, factor FROM units WHERE company_id = $1 AND id = $2`,
		companyID, id).Scan(&u.ID, &u.CompanyID, &u.Name, &u.MainUnitID, &u.Factor)
	if errors.Is(err, pgx.ErrNoRows) {
		return Unit{}, shared.ErrNotFound
	}
	return u, err
}

func (r *repository) Create(ctx context.Context, unit Unit) (Unit, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO units (company_id, name, main_unit_id, factor)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		unit.CompanyID, unit.Name, unit.MainUnitID, unit.Factor).Scan(&unit.ID)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Unit{}, fmt.Errorf("unit %q already exists: %w", unit.Name, shared.ErrDuplicate)
		}
		return Unit{}, err
	}
	return unit, nil
}

func (r *repository) Update(ctx context.Context, unit Unit) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE units SET name = $3, main_unit_id = $4, factor = $5, updated_at = now()
		 WHERE company_id = $1 AND id = $2`,
		unit.CompanyID, unit.ID, unit.Name, unit.MainUnitID, unit.Factor)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return fmt.Errorf("unit %q already exists: %w", unit.Name, shared.ErrDuplicate)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM units WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CountItemsUsing(ctx context.Context, companyID, id int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM items WHERE company_id = $1 AND unit_id = $2`, companyID, id).Scan(&n)
	return n, err
}

func (r *repository) ListMain(ctx context.Context, filters mdshared.ListFilters) ([]MainUnit, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM main_units WHERE company_id = $1`, filters.CompanyID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, company_id, name FROM main_units WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		filters.CompanyID, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var mains []MainUnit
	for rows.Next() {
		var mu MainUnit
		if err := rows.Scan(&mu.ID, &mu.CompanyID, &mu.Name); err != nil {
			return nil, 0, err
		}
		mains = append(mains, mu)
	}
	return mains, total, rows.Err()
}

func (r *repository) CreateMain(ctx context.Context, mu MainUnit) (MainUnit, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO main_units (company_id, name) VALUES ($1, $2) RETURNING id`,
		mu.CompanyID, mu.Name).Scan(&mu.ID)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return MainUnit{}, fmt.Errorf("main unit %q already exists: %w", mu.Name, shared.ErrDuplicate)
		}
		return MainUnit{}, err
	}
	return mu, nil
}

func (r *repository) DeleteMain(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM main_units WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CountUnitsUsingMain(ctx context.Context, companyID, id int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM units WHERE company_id = $1 AND main_unit_id = $2`, companyID, id).Scan(&n)
	return n, err
}
