package compositions

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
	List(ctx context.Context, filters mdshared.ListFilters) ([]Composition, int, error)
	Get(ctx context.Context, companyID, id int64) (Composition, error)
	Create(ctx context.Context, c Composition) (Composition, error)
	Update(ctx context.Context, c Composition) error
	Delete(ctx context.Context, companyID, id int64) error
	CountItemsUsing(ctx context.Context, id int64) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Composition, int, error) {
	query := `SELECT id, company_id, name FROM compositions WHERE company_id = $1`
	countQuery := `SELECT COUNT(*) FROM compositions WHERE company_id = $1`
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

	var comps []Composition
	for rows.Next() {
		var c Composition
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name); err != nil {
			return nil, 0, err
		}
		comps = append(comps, c)
	}
	return comps, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Composition, error) {
	var c Composition
	err := r.pool.QueryRow(ctx,
		`SELECT id, company_id, name FROM compositions WHERE company_id = $1 AND id = $2`,
		companyID, id).Scan(&c.ID, &c.CompanyID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Composition{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c Composition) (Composition, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO compositions (company_id, name) VALUES ($1, $2) RETURNING id`,
		c.CompanyID, c.Name).Scan(&c.ID)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Composition{}, fmt.Errorf("composition %q already exists: %w", c.Name, shared.ErrDuplicate)
		}
		return Composition{}, err
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, c Composition) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE compositions SET name = $3, updated_at = now() WHERE company_id = $1 AND id = $2`,
		c.CompanyID, c.ID, c.Name)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return fmt.Errorf("composition %q already exists: %w", c.Name, shared.ErrDuplicate)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM compositions WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CountItemsUsing(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM item_compositions WHERE composition_id = $1`, id).Scan(&n)
	return n, err
}
