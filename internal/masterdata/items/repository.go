package items

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
	List(ctx context.Context, filters mdshared.ListFilters) ([]Item, int, error)
	Get(ctx context.Context, companyID, id int64) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, item Item) error
	Delete(ctx context.Context, companyID, id int64) error
	CountTransactionsUsing(ctx context.Context, companyID, id int64) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const itemColumns = `id, company_id, name, unit_id, purchase_price, selling_price, vatable`

func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Item, int, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE company_id = $1`
	countQuery := `SELECT COUNT(*) FROM items WHERE company_id = $1`
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

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.CompanyID, &it.Name, &it.UnitID, &it.PurchasePrice, &it.SellingPrice, &it.Vatable); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Item, error) {
	var it Item
	err := r.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE company_id = $1 AND id = $2`, companyID, id).
		Scan(&it.ID, &it.CompanyID, &it.Name, &it.UnitID, &it.PurchasePrice, &it.SellingPrice, &it.Vatable)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, shared.ErrNotFound
	}
	if err != nil {
		return Item{}, err
	}

	compRows, err := r.pool.Query(ctx,
		`SELECT composition_id FROM item_compositions WHERE item_id = $1 ORDER BY composition_id`, id)
	if err != nil {
		return Item{}, err
	}
	defer compRows.Close()
	for compRows.Next() {
		var cid int64
		if err := compRows.Scan(&cid); err != nil {
			return Item{}, err
		}
		it.CompositionIDs = append(it.CompositionIDs, cid)
	}
	return it, compRows.Err()
}

func (r *repository) Create(ctx context.Context, item Item) (Item, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Item{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO items (company_id, name, unit_id, purchase_price, selling_price, vatable)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		item.CompanyID, item.Name, item.UnitID, item.PurchasePrice, item.SellingPrice, item.Vatable).Scan(&item.ID)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Item{}, fmt.Errorf("item %q already exists: %w", item.Name, shared.ErrDuplicate)
		}
		return Item{}, err
	}

	for _, cid := range item.CompositionIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO item_compositions (item_id, composition_id) VALUES ($1, $2)`, item.ID, cid); err != nil {
			return Item{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *repository) Update(ctx context.Context, item Item) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE items SET name = $3, unit_id = $4, purchase_price = $5, selling_price = $6, vatable = $7, updated_at = now()
		 WHERE company_id = $1 AND id = $2`,
		item.CompanyID, item.ID, item.Name, item.UnitID, item.PurchasePrice, item.SellingPrice, item.Vatable)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return fmt.Errorf("item %q already exists: %w", item.Name, shared.ErrDuplicate)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM item_compositions WHERE item_id = $1`, item.ID); err != nil {
		return err
	}
	for _, cid := range item.CompositionIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO item_compositions (item_id, composition_id) VALUES ($1, $2)`, item.ID, cid); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *repository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE company_id = $1 AND id = $2`, companyID, id)
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
		`SELECT COUNT(*) FROM transactions WHERE company_id = $1 AND item_id = $2`, companyID, id).Scan(&n)
	return n, err
}
