package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merobill/merobill/internal/shared"
)

type Repository interface {
	// Get returns the record for key. The bool is false when no record
	// exists; reads never create.
	Get(ctx context.Context, key Key) (Settings, bool, error)
	// Create inserts a fresh record, surfacing shared.ErrDuplicate when the
	// (company, user, fiscal-year) combination already exists.
	Create(ctx context.Context, s Settings) (Settings, error)
	// Upsert atomically creates or merges a patch into the record for key.
	Upsert(ctx context.Context, key Key, patch Patch) (Settings, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const settingsColumns = `id, company_id, user_id, fiscal_year_id,
	round_off_sales, round_off_purchase, round_off_sales_return, round_off_purchase_return,
	display_transactions, display_transactions_purchase, display_transactions_sales_return, display_transactions_purchase_return,
	store_management, extra`

func (r *repository) Get(ctx context.Context, key Key) (Settings, bool, error) {
	query := `SELECT ` + settingsColumns + ` FROM settings WHERE company_id = $1 AND user_id = $2 AND fiscal_year_id = $3`
	args := []any{key.CompanyID, key.UserID, key.FiscalYearID}
	if key.Legacy() {
		query = `SELECT ` + settingsColumns + ` FROM settings WHERE company_id = $1 AND user_id = $2 AND fiscal_year_id IS NULL`
		args = args[:2]
	}

	s, err := scanSettings(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, false, nil
	}
	if err != nil {
		return Settings{}, false, fmt.Errorf("settings: get: %w", err)
	}
	return s, true, nil
}

func (r *repository) Create(ctx context.Context, s Settings) (Settings, error) {
	extra, err := marshalExtra(s.Extra)
	if err != nil {
		return Settings{}, err
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO settings (company_id, user_id, fiscal_year_id,
			round_off_sales, round_off_purchase, round_off_sales_return, round_off_purchase_return,
			display_transactions, display_transactions_purchase, display_transactions_sales_return, display_transactions_purchase_return,
			store_management, extra)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING `+settingsColumns,
		s.CompanyID, s.UserID, s.FiscalYearID,
		s.RoundOffSales, s.RoundOffPurchase, s.RoundOffSalesReturn, s.RoundOffPurchaseReturn,
		s.DisplayTransactions, s.DisplayTransactionsForPurchase, s.DisplayTransactionsForSalesReturn, s.DisplayTransactionsForPurchaseReturn,
		s.StoreManagement, extra)

	created, err := scanSettings(row)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Settings{}, fmt.Errorf("settings for this company, user and fiscal year already exist: %w", shared.ErrDuplicate)
		}
		return Settings{}, fmt.Errorf("settings: create: %w", err)
	}
	return created, nil
}

// Upsert relies on the UNIQUE NULLS NOT DISTINCT index over
// (company_id, user_id, fiscal_year_id) so legacy rows conflict too. Patched
// fields overwrite, absent fields keep their stored value, and a first write
// defaults unset flags to false. The extra bag merges at the key level.
func (r *repository) Upsert(ctx context.Context, key Key, patch Patch) (Settings, error) {
	extra, err := marshalExtra(patch.Extra)
	if err != nil {
		return Settings{}, err
	}
	var fiscalYearID *int64
	if !key.Legacy() {
		fy := key.FiscalYearID
		fiscalYearID = &fy
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO settings (company_id, user_id, fiscal_year_id,
			round_off_sales, round_off_purchase, round_off_sales_return, round_off_purchase_return,
			display_transactions, display_transactions_purchase, display_transactions_sales_return, display_transactions_purchase_return,
			store_management, extra)
		 VALUES ($1, $2, $3,
			COALESCE($4, false), COALESCE($5, false), COALESCE($6, false), COALESCE($7, false),
			COALESCE($8, false), COALESCE($9, false), COALESCE($10, false), COALESCE($11, false),
			COALESCE($12, false), COALESCE($13, '{}'::jsonb))
		 ON CONFLICT (company_id, user_id, fiscal_year_id) DO UPDATE SET
			round_off_sales = COALESCE($4, settings.round_off_sales),
			round_off_purchase = COALESCE($5, settings.round_off_purchase),
			round_off_sales_return = COALESCE($6, settings.round_off_sales_return),
			round_off_purchase_return = COALESCE($7, settings.round_off_purchase_return),
			display_transactions = COALESCE($8, settings.display_transactions),
			display_transactions_purchase = COALESCE($9, settings.display_transactions_purchase),
			display_transactions_sales_return = COALESCE($10, settings.display_transactions_sales_return),
			display_transactions_purchase_return = COALESCE($11, settings.display_transactions_purchase_return),
			store_management = COALESCE($12, settings.store_management),
			extra = settings.extra || COALESCE($13, '{}'::jsonb),
			updated_at = now()
		 RETURNING `+settingsColumns,
		key.CompanyID, key.UserID, fiscalYearID,
		patch.RoundOffSales, patch.RoundOffPurchase, patch.RoundOffSalesReturn, patch.RoundOffPurchaseReturn,
		patch.DisplayTransactions, patch.DisplayTransactionsForPurchase, patch.DisplayTransactionsForSalesReturn, patch.DisplayTransactionsForPurchaseReturn,
		patch.StoreManagement, extra)

	s, err := scanSettings(row)
	if err != nil {
		return Settings{}, fmt.Errorf("settings: upsert: %w", err)
	}
	return s, nil
}

func scanSettings(row pgx.Row) (Settings, error) {
	var s Settings
	var extra []byte
	err := row.Scan(&s.ID, &s.CompanyID, &s.UserID, &s.FiscalYearID,
		&s.RoundOffSales, &s.RoundOffPurchase, &s.RoundOffSalesReturn, &s.RoundOffPurchaseReturn,
		&s.DisplayTransactions, &s.DisplayTransactionsForPurchase, &s.DisplayTransactionsForSalesReturn, &s.DisplayTransactionsForPurchaseReturn,
		&s.StoreManagement, &extra)
	if err != nil {
		return Settings{}, err
	}
	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &s.Extra); err != nil {
			return Settings{}, err
		}
	}
	return s, nil
}

func marshalExtra(extra map[string]any) ([]byte, error) {
	if len(extra) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return nil, fmt.Errorf("settings: marshal extra: %w", err)
	}
	return data, nil
}
