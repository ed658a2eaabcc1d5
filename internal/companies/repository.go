package companies

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merobill/merobill/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (Company, error)
	ListForUser(ctx context.Context, userID int64) ([]Company, error)
	Create(ctx context.Context, c Company, ownerID int64) (Company, error)
	SetCurrentFiscalYear(ctx context.Context, companyID, fiscalYearID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const companyColumns = `id, name, trade_type, address, phone, pan, current_fiscal_year_id, created_at`

func (r *repository) Get(ctx context.Context, id int64) (Company, error) {
	c, err := scanCompany(r.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, shared.ErrNotFound
	}
	if err != nil {
		return Company{}, err
	}
	return c, nil
}

func (r *repository) ListForUser(ctx context.Context, userID int64) ([]Company, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.name, c.trade_type, c.address, c.phone, c.pan, c.current_fiscal_year_id, c.created_at
		 FROM companies c
		 JOIN company_users cu ON cu.company_id = c.id
		 WHERE cu.user_id = $1
		 ORDER BY c.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create inserts the company and its owner membership in one transaction.
func (r *repository) Create(ctx context.Context, c Company, ownerID int64) (Company, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Company{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	created, err := scanCompany(tx.QueryRow(ctx,
		`INSERT INTO companies (name, trade_type, address, phone, pan)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+companyColumns,
		c.Name, c.TradeType, c.Address, c.Phone, c.PAN))
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Company{}, fmt.Errorf("a company with this name already exists: %w", shared.ErrDuplicate)
		}
		return Company{}, err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO company_users (company_id, user_id, role) VALUES ($1, $2, 'admin')`,
		created.ID, ownerID); err != nil {
		return Company{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Company{}, err
	}
	return created, nil
}

func (r *repository) SetCurrentFiscalYear(ctx context.Context, companyID, fiscalYearID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE companies SET current_fiscal_year_id = $2, updated_at = now() WHERE id = $1`,
		companyID, fiscalYearID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCompany(row pgx.Row) (Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.TradeType, &c.Address, &c.Phone, &c.PAN, &c.CurrentFiscalYearID, &c.CreatedAt)
	return c, err
}
