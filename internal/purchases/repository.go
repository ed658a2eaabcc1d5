package purchases

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merobill/merobill/internal/platform/db"
	"github.com/merobill/merobill/internal/shared"
	"github.com/merobill/merobill/internal/transactions"
)

type Repository interface {
	// Create assigns the next voucher number for the class and writes the
	// header, lines and per-line transaction rows in one transaction.
	Create(ctx context.Context, v *Voucher) error
	Get(ctx context.Context, companyID, id int64) (Voucher, error)
	List(ctx context.Context, companyID, fiscalYearID int64, class transactions.Class, limit, offset int) ([]Voucher, int, error)
	// FindPartyBill looks for another account's voucher already carrying the
	// party bill number within the fiscal year. Returns nil when clean.
	FindPartyBill(ctx context.Context, companyID, fiscalYearID int64, partyBillNumber string, accountID int64) (*Conflict, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// voucherAttempts bounds the replays when concurrent posts race for the
// same voucher number. Each collision aborts on the
// (company, fiscal_year, class, voucher_number) unique index and the whole
// transaction is replayed against the new MAX.
const voucherAttempts = 3

func (r *repository) Create(ctx context.Context, v *Voucher) error {
	return retryVoucherCollision(voucherAttempts, func() error {
		return r.createOnce(ctx, v)
	})
}

func retryVoucherCollision(attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if !shared.IsUniqueViolation(err) {
			return err
		}
	}
	return fmt.Errorf("purchases: voucher number contention after %d attempts: %w", attempts, err)
}

func (r *repository) createOnce(ctx context.Context, v *Voucher) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(voucher_number), 0) + 1
			 FROM purchase_vouchers
			 WHERE company_id = $1 AND fiscal_year_id = $2 AND class = $3`,
			v.CompanyID, v.FiscalYearID, string(v.Class)).Scan(&v.VoucherNumber)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO purchase_vouchers
			   (company_id, fiscal_year_id, user_id, account_id, class, voucher_number,
			    party_bill_number, txn_date, nepali_date,
			    sub_total, taxable_amount, non_taxable_amount, vat_amount,
			    discount_amount, discount_percent, total_cc_amount,
			    round_off_amount, total_amount)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
			 RETURNING id, created_at`,
			v.CompanyID, v.FiscalYearID, v.UserID, v.AccountID, string(v.Class), v.VoucherNumber,
			v.PartyBillNumber, v.Date, v.NepaliDate,
			v.Totals.SubTotal, v.Totals.TaxableAmount, v.Totals.NonTaxableAmount, v.Totals.VATAmount,
			v.Totals.DiscountAmount, v.Totals.DiscountPercent, v.Totals.TotalCCAmount,
			v.Totals.RoundOffAmount, v.Totals.TotalAmount).Scan(&v.ID, &v.CreatedAt)
		if err != nil {
			return err
		}

		for i := range v.Lines {
			line := &v.Lines[i]
			err := tx.QueryRow(ctx,
				`INSERT INTO purchase_lines
				   (voucher_id, item_id, unit_id, quantity, bonus, unit_price, amount, vatable, cc_amount)
				 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
				 RETURNING id`,
				v.ID, line.ItemID, line.UnitID, line.Quantity, line.Bonus,
				line.UnitPrice, line.Amount, line.Vatable, line.CCAmount).Scan(&line.ID)
			if err != nil {
				return err
			}

			_, err = tx.Exec(ctx,
				`INSERT INTO transactions
				   (company_id, fiscal_year_id, class, txn_date, nepali_date, voucher_number, bill_number,
				    account_id, item_id, unit_id, quantity, rate, amount)
				 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
				v.CompanyID, v.FiscalYearID, string(v.Class), v.Date, v.NepaliDate, v.VoucherNumber,
				v.PartyBillNumber, v.AccountID, line.ItemID, line.UnitID,
				line.Quantity, line.UnitPrice, line.Amount)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

const voucherColumns = `id, company_id, fiscal_year_id, user_id, account_id, class, voucher_number,
	party_bill_number, txn_date, nepali_date,
	sub_total, taxable_amount, non_taxable_amount, vat_amount,
	discount_amount, discount_percent, total_cc_amount,
	round_off_amount, total_amount, created_at`

func scanVoucher(row pgx.Row) (Voucher, error) {
	var v Voucher
	err := row.Scan(&v.ID, &v.CompanyID, &v.FiscalYearID, &v.UserID, &v.AccountID, &v.Class, &v.VoucherNumber,
		&v.PartyBillNumber, &v.Date, &v.NepaliDate,
		&v.Totals.SubTotal, &v.Totals.TaxableAmount, &v.Totals.NonTaxableAmount, &v.Totals.VATAmount,
		&v.Totals.DiscountAmount, &v.Totals.DiscountPercent, &v.Totals.TotalCCAmount,
		&v.Totals.RoundOffAmount, &v.Totals.TotalAmount, &v.CreatedAt)
	return v, err
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Voucher, error) {
	v, err := scanVoucher(r.pool.QueryRow(ctx,
		`SELECT `+voucherColumns+` FROM purchase_vouchers WHERE company_id = $1 AND id = $2`,
		companyID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Voucher{}, shared.ErrNotFound
	}
	if err != nil {
		return Voucher{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, item_id, unit_id, quantity, bonus, unit_price, amount, vatable, cc_amount
		 FROM purchase_lines WHERE voucher_id = $1 ORDER BY id`, v.ID)
	if err != nil {
		return Voucher{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.ItemID, &line.UnitID, &line.Quantity, &line.Bonus,
			&line.UnitPrice, &line.Amount, &line.Vatable, &line.CCAmount); err != nil {
			return Voucher{}, err
		}
		v.Lines = append(v.Lines, line)
	}
	return v, rows.Err()
}

func (r *repository) List(ctx context.Context, companyID, fiscalYearID int64, class transactions.Class, limit, offset int) ([]Voucher, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM purchase_vouchers
		 WHERE company_id = $1 AND fiscal_year_id = $2 AND class = $3`,
		companyID, fiscalYearID, string(class)).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+voucherColumns+` FROM purchase_vouchers
		 WHERE company_id = $1 AND fiscal_year_id = $2 AND class = $3
		 ORDER BY voucher_number DESC
		 LIMIT $4 OFFSET $5`,
		companyID, fiscalYearID, string(class), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

func (r *repository) FindPartyBill(ctx context.Context, companyID, fiscalYearID int64, partyBillNumber string, accountID int64) (*Conflict, error) {
	var c Conflict
	err := r.pool.QueryRow(ctx,
		`SELECT a.name, v.txn_date, v.nepali_date, v.voucher_number
		 FROM purchase_vouchers v
		 JOIN accounts a ON a.id = v.account_id
		 WHERE v.company_id = $1 AND v.fiscal_year_id = $2
		   AND v.party_bill_number = $3 AND v.account_id <> $4
		 ORDER BY v.txn_date DESC, v.voucher_number DESC
		 LIMIT 1`,
		companyID, fiscalYearID, partyBillNumber, accountID).
		Scan(&c.PartyName, &c.Date, &c.NepaliDate, &c.VoucherNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
