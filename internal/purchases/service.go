package purchases

import (
	"context"
	"fmt"

	"github.com/merobill/merobill/internal/billing"
	"github.com/merobill/merobill/internal/shared"
	"github.com/merobill/merobill/internal/transactions"
)

// HistoryCache is the display-gate cache hook; posting a voucher stales the
// operator's cached history for the party account.
type HistoryCache interface {
	InvalidateAccount(ctx context.Context, sessionID string, accountID int64) error
}

type Service struct {
	repo  Repository
	cache HistoryCache
}

func NewService(repo Repository, cache HistoryCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// PostContext identifies who is posting and into which books.
type PostContext struct {
	SessionID    string
	CompanyID    int64
	UserID       int64
	FiscalYearID int64
}

// Post validates and persists a submission. The returned conflict, when
// non-nil, warns that another party already used the bill number; the
// voucher is posted regardless.
func (s *Service) Post(ctx context.Context, pc PostContext, sub Submission) (Voucher, *Conflict, error) {
	if err := validateSubmission(sub); err != nil {
		return Voucher{}, nil, err
	}

	totals := billing.Calculate(sub.Draft)
	if !sub.DeclaredTotal.Equal(totals.TotalAmount) {
		return Voucher{}, nil, fmt.Errorf(
			"submitted total %s does not match computed total %s: %w",
			sub.DeclaredTotal.StringFixed(2), totals.TotalAmount.StringFixed(2), shared.ErrValidation)
	}

	var conflict *Conflict
	if sub.PartyBillNumber != "" {
		found, err := s.repo.FindPartyBill(ctx, pc.CompanyID, pc.FiscalYearID, sub.PartyBillNumber, sub.AccountID)
		if err != nil {
			return Voucher{}, nil, err
		}
		conflict = found
	}

	v := Voucher{
		CompanyID:       pc.CompanyID,
		FiscalYearID:    pc.FiscalYearID,
		UserID:          pc.UserID,
		AccountID:       sub.AccountID,
		Class:           sub.Class,
		PartyBillNumber: sub.PartyBillNumber,
		Date:            sub.Date,
		NepaliDate:      sub.NepaliDate,
		Totals:          totals,
		Lines:           linesFromDraft(sub.Draft),
	}
	if err := s.repo.Create(ctx, &v); err != nil {
		return Voucher{}, nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateAccount(ctx, pc.SessionID, sub.AccountID)
	}
	return v, conflict, nil
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Voucher, error) {
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) List(ctx context.Context, companyID, fiscalYearID int64, class transactions.Class, page, limit int) ([]Voucher, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, companyID, fiscalYearID, class, limit, (page-1)*limit)
}

func validateSubmission(sub Submission) error {
	if sub.Class != transactions.ClassPurchase && sub.Class != transactions.ClassPurchaseReturn {
		return fmt.Errorf("voucher class must be Purchase or PurchaseReturn: %w", shared.ErrValidation)
	}
	if sub.AccountID == 0 {
		return fmt.Errorf("party account is required: %w", shared.ErrValidation)
	}
	if sub.Date.IsZero() {
		return fmt.Errorf("transaction date is required: %w", shared.ErrValidation)
	}
	if sub.NepaliDate != "" && !validNepaliDate(sub.NepaliDate) {
		return fmt.Errorf("nepali date must be YYYY-MM-DD with month 1-12 and day 1-32: %w", shared.ErrValidation)
	}
	if len(sub.Draft.Lines) == 0 {
		return fmt.Errorf("at least one line is required: %w", shared.ErrValidation)
	}
	for i, line := range sub.Draft.Lines {
		if line.ItemID == 0 {
			return fmt.Errorf("line %d: item is required: %w", i+1, shared.ErrValidation)
		}
		if !line.Quantity.IsPositive() {
			return fmt.Errorf("line %d: quantity must be positive: %w", i+1, shared.ErrValidation)
		}
		if line.UnitPrice.IsNegative() {
			return fmt.Errorf("line %d: unit price cannot be negative: %w", i+1, shared.ErrValidation)
		}
	}
	return nil
}

// validNepaliDate checks a Bikram Sambat date string. BS months run up to
// 32 days, so the day range is wider than the Gregorian one.
func validNepaliDate(s string) bool {
	var year, month, day int
	if _, err := fmt.Sscanf(s, "%4d-%2d-%2d", &year, &month, &day); err != nil {
		return false
	}
	return year >= 2000 && year <= 2199 && month >= 1 && month <= 12 && day >= 1 && day <= 32
}

func linesFromDraft(d billing.Draft) []Line {
	out := make([]Line, 0, len(d.Lines))
	for _, l := range d.Lines {
		out = append(out, Line{
			ItemID:    l.ItemID,
			UnitID:    l.UnitID,
			Quantity:  l.Quantity,
			Bonus:     l.Bonus,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount(),
			Vatable:   l.Vatable,
			CCAmount:  l.CCAmount,
		})
	}
	return out
}
