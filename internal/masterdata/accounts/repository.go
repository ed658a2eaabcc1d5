package accounts

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
	List(ctx context.Context, filters mdshared.ListFilters) ([]Account, int, error)
	Get(ctx context.Context, companyID, id int64) (Account, error)
	Create(ctx context.Context, a Account) (Account, error)
	Update(ctx context.Context, a Account) error
	Delete(ctx context.Context, companyID, id int64) error
	CountTransactionsUsing(ctx context.Context, companyID, id int64) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const accountColumns = `id, company_id, name, account_type, pan, address, phone`

func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Account, int, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE company_id = $1`
	countQuery := `SELECT COUNT(*) FROM accounts WHERE company_id = $1`
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

	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Name, &a.AccountType, &a.PAN, &a.Address, &a.Phone); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE company_id = $1 AND id = $2`, companyID, id).
		Scan(&a.ID, &a.CompanyID, &a.Name, &a.AccountType, &a.PAN, &a.Address, &a.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, shared.ErrNotFound
	}
	return a, err
}

func (r *repository) Create(ctx context.Context, a Account) (Account, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (company_id, name, account_type, pan, address, phone)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		a.CompanyID, a.Name, a.AccountType, a.PAN, a.Address, a.Phone).Scan(&a.ID)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Account{}, fmt.Errorf("account %q already exists: %w", a.Name, shared.ErrDuplicate)
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) Update(ctx context.Context, a Account) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET name = $3, account_type = $4, pan = $5, address = $6, phone = $7, updated_at = now()
		 WHERE company_id = $1 AND id = $2`,
		a.CompanyID, a.ID, a.Name, a.AccountType, a.PAN, a.Address, a.Phone)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return fmt.Errorf("account %q already exists: %w", a.Name, shared.ErrDuplicate)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CountTransactionsUsing(ctx context.Context, companyID, id int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE company_id = $1 AND account_id = $2`, companyID, id).Scan(&n)
	return n, err
}
