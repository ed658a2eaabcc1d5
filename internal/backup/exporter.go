// Package backup produces gzip-compressed JSON exports of one company's
// books, served on demand and written nightly by the worker.
package backup

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Exporter reads every company-scoped table into a single JSON document.
type Exporter struct {
	pool *pgxpool.Pool
}

func NewExporter(pool *pgxpool.Pool) *Exporter {
	return &Exporter{pool: pool}
}

// Sections of the export, in write order. Passwords never leave the
// database; the users section carries identity columns only.
var sections = []struct {
	name  string
	query string
}{
	{"company", `SELECT id, name, trade_type, current_fiscal_year_id, created_at FROM companies WHERE id = $1`},
	{"users", `SELECT u.id, u.name, u.email, u.theme, cu.role
	           FROM users u JOIN company_users cu ON cu.user_id = u.id WHERE cu.company_id = $1`},
	{"fiscalYears", `SELECT id, name, start_date, end_date, date_format, is_active FROM fiscal_years WHERE company_id = $1`},
	{"settings", `SELECT * FROM settings WHERE company_id = $1`},
	{"mainUnits", `SELECT id, name FROM main_units WHERE company_id = $1`},
	{"units", `SELECT id, name, main_unit_id, factor FROM units WHERE company_id = $1`},
	{"compositions", `SELECT id, name FROM compositions WHERE company_id = $1`},
	{"items", `SELECT id, name, unit_id, purchase_price, selling_price, vatable FROM items WHERE company_id = $1`},
	{"itemCompositions", `SELECT ic.item_id, ic.composition_id
	                      FROM item_compositions ic JOIN items i ON i.id = ic.item_id WHERE i.company_id = $1`},
	{"accounts", `SELECT id, name, account_type FROM accounts WHERE company_id = $1`},
	{"purchaseVouchers", `SELECT * FROM purchase_vouchers WHERE company_id = $1`},
	{"purchaseLines", `SELECT l.* FROM purchase_lines l
	                   JOIN purchase_vouchers v ON v.id = l.voucher_id WHERE v.company_id = $1`},
	{"transactions", `SELECT * FROM transactions WHERE company_id = $1`},
}

// Export streams the company's data as gzip-compressed JSON into out.
func (e *Exporter) Export(ctx context.Context, companyID int64, out io.Writer) error {
	doc := map[string]any{
		"companyId":  companyID,
		"exportedAt": time.Now().UTC().Format(time.RFC3339),
	}
	for _, section := range sections {
		rows, err := e.pool.Query(ctx, section.query, companyID)
		if err != nil {
			return fmt.Errorf("backup: query %s: %w", section.name, err)
		}
		records, err := rowsToMaps(rows)
		if err != nil {
			return fmt.Errorf("backup: read %s: %w", section.name, err)
		}
		doc[section.name] = records
	}

	gz := gzip.NewWriter(out)
	if err := json.NewEncoder(gz).Encode(doc); err != nil {
		return fmt.Errorf("backup: encode: %w", err)
	}
	return gz.Close()
}

// ExportToDir writes the export into dir and returns the file path. Used by
// the nightly job.
func (e *Exporter) ExportToDir(ctx context.Context, companyID int64, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("backup: create dir: %w", err)
	}
	name := fmt.Sprintf("backup-company-%d-%s.json.gz", companyID, time.Now().UTC().Format("2006-01-02"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("backup: create file: %w", err)
	}
	if err := e.Export(ctx, companyID, f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// CompanyIDs lists every company, for the nightly sweep.
func (e *Exporter) CompanyIDs(ctx context.Context) ([]int64, error) {
	rows, err := e.pool.Query(ctx, `SELECT id FROM companies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func rowsToMaps(rows pgx.Rows) ([]map[string]any, error) {
	defer rows.Close()
	fields := rows.FieldDescriptions()
	out := []map[string]any{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		record := make(map[string]any, len(fields))
		for i, field := range fields {
			record[string(field.Name)] = values[i]
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
