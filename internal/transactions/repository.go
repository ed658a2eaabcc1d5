package transactions

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Query identifies a history lookup.
type Query struct {
	CompanyID    int64
	FiscalYearID int64
	ItemID       int64
	AccountID    int64
	Class        Class
	Limit        int
}

type Repository interface {
	// ListRecent returns at most Limit transactions ordered newest first,
	// tie-broken by voucher number descending.
	ListRecent(ctx context.Context, q Query) ([]Transaction, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListRecent(ctx context.Context, q Query) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.class, t.txn_date, t.nepali_date, t.voucher_number, t.bill_number,
		        a.name, i.name, u.name, t.quantity, t.rate, t.amount
		 FROM transactions t
		 JOIN accounts a ON a.id = t.account_id
		 JOIN items i ON i.id = t.item_id
		 LEFT JOIN units u ON u.id = t.unit_id
		 WHERE t.company_id = $1 AND t.fiscal_year_id = $2
		   AND t.item_id = $3 AND t.account_id = $4 AND t.class = $5
		 ORDER BY t.txn_date DESC, t.voucher_number DESC
		 LIMIT $6`,
		q.CompanyID, q.FiscalYearID, q.ItemID, q.AccountID, string(q.Class), q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		var unitName *string
		if err := rows.Scan(&t.ID, &t.Class, &t.Date, &t.NepaliDate, &t.VoucherNumber, &t.BillNumber,
			&t.AccountName, &t.ItemName, &unitName, &t.Quantity, &t.Rate, &t.Amount); err != nil {
			return nil, err
		}
		if unitName != nil {
			t.UnitName = *unitName
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
