package purchases

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merobill/merobill/internal/billing"
	"github.com/merobill/merobill/internal/shared"
	"github.com/merobill/merobill/internal/transactions"
)

type mockRepo struct {
	vouchers    map[int64]Voucher
	nextID      int64
	createCalls int
	createErr   error
	partyNames  map[int64]string
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		vouchers:   make(map[int64]Voucher),
		nextID:     1,
		partyNames: map[int64]string{},
	}
}

func (m *mockRepo) Create(ctx context.Context, v *Voucher) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	var maxNum int64
	for _, existing := range m.vouchers {
		if existing.CompanyID == v.CompanyID && existing.FiscalYearID == v.FiscalYearID &&
			existing.Class == v.Class && existing.VoucherNumber > maxNum {
			maxNum = existing.VoucherNumber
		}
	}
	v.VoucherNumber = maxNum + 1
	v.ID = m.nextID
	m.nextID++
	v.CreatedAt = time.Now()
	m.vouchers[v.ID] = *v
	return nil
}

func (m *mockRepo) Get(ctx context.Context, companyID, id int64) (Voucher, error) {
	v, ok := m.vouchers[id]
	if !ok || v.CompanyID != companyID {
		return Voucher{}, shared.ErrNotFound
	}
	return v, nil
}

func (m *mockRepo) List(ctx context.Context, companyID, fiscalYearID int64, class transactions.Class, limit, offset int) ([]Voucher, int, error) {
	var out []Voucher
	for _, v := range m.vouchers {
		if v.CompanyID == companyID && v.FiscalYearID == fiscalYearID && v.Class == class {
			out = append(out, v)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) FindPartyBill(ctx context.Context, companyID, fiscalYearID int64, partyBillNumber string, accountID int64) (*Conflict, error) {
	for _, v := range m.vouchers {
		if v.CompanyID == companyID && v.FiscalYearID == fiscalYearID &&
			v.PartyBillNumber == partyBillNumber && v.AccountID != accountID {
			return &Conflict{
				PartyName:     m.partyNames[v.AccountID],
				Date:          v.Date,
				NepaliDate:    v.NepaliDate,
				VoucherNumber: v.VoucherNumber,
			}, nil
		}
	}
	return nil, nil
}

type mockCache struct {
	invalidated []int64
}

func (m *mockCache) InvalidateAccount(ctx context.Context, sessionID string, accountID int64) error {
	m.invalidated = append(m.invalidated, accountID)
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testContext() PostContext {
	return PostContext{SessionID: "sess-1", CompanyID: 7, UserID: 3, FiscalYearID: 81}
}

func testSubmission(partyBill string, accountID int64) Submission {
	draft := billing.Draft{
		Lines: []billing.Line{
			{ItemID: 1, UnitID: 1, Quantity: dec("2"), UnitPrice: dec("50"), Vatable: true},
		},
		VATMode: billing.VATModeAll,
		VATRate: dec("13"),
	}
	return Submission{
		Class:           transactions.ClassPurchase,
		AccountID:       accountID,
		PartyBillNumber: partyBill,
		Date:            time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC),
		NepaliDate:      "2081-04-01",
		Draft:           draft,
		DeclaredTotal:   billing.Calculate(draft).TotalAmount,
	}
}

func TestPostAssignsVoucherNumberAndServerTotals(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	v, conflict, err := svc.Post(context.Background(), testContext(), testSubmission("PB-100", 10))
	require.NoError(t, err)
	assert.Nil(t, conflict)
	assert.Equal(t, int64(1), v.VoucherNumber)
	assert.True(t, v.Totals.TotalAmount.Equal(dec("113")), "got %s", v.Totals.TotalAmount)
	require.Len(t, v.Lines, 1)
	assert.True(t, v.Lines[0].Amount.Equal(dec("100")))

	v2, _, err := svc.Post(context.Background(), testContext(), testSubmission("PB-101", 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2.VoucherNumber)
}

func TestPostRejectsTotalDrift(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	sub := testSubmission("PB-100", 10)
	sub.DeclaredTotal = sub.DeclaredTotal.Add(dec("0.01"))

	_, _, err := svc.Post(context.Background(), testContext(), sub)
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Zero(t, repo.createCalls, "nothing may be written when totals disagree")
}

func TestPostWarnsOnDuplicatePartyBillWithoutBlocking(t *testing.T) {
	repo := newMockRepo()
	repo.partyNames[10] = "Himalayan Traders"
	svc := NewService(repo, nil)

	_, _, err := svc.Post(context.Background(), testContext(), testSubmission("PB-555", 10))
	require.NoError(t, err)

	v, conflict, err := svc.Post(context.Background(), testContext(), testSubmission("PB-555", 20))
	require.NoError(t, err)
	require.NotNil(t, conflict, "reused bill number under another account must warn")
	assert.Equal(t, "Himalayan Traders", conflict.PartyName)
	assert.Equal(t, "2081-04-01", conflict.NepaliDate)
	assert.NotZero(t, v.ID, "the warning must not block the posting")
	assert.Equal(t, 2, repo.createCalls)
}

func TestPostAllowsSameAccountToReuseBillNumber(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	_, _, err := svc.Post(context.Background(), testContext(), testSubmission("PB-9", 10))
	require.NoError(t, err)

	_, conflict, err := svc.Post(context.Background(), testContext(), testSubmission("PB-9", 10))
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestPostValidation(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	cases := map[string]func(*Submission){
		"wrong class":       func(s *Submission) { s.Class = transactions.ClassSales },
		"missing account":   func(s *Submission) { s.AccountID = 0 },
		"missing date":      func(s *Submission) { s.Date = time.Time{} },
		"no lines":          func(s *Submission) { s.Draft.Lines = nil },
		"zero quantity":     func(s *Submission) { s.Draft.Lines[0].Quantity = decimal.Zero },
		"negative price":    func(s *Submission) { s.Draft.Lines[0].UnitPrice = dec("-1") },
		"line without item": func(s *Submission) { s.Draft.Lines[0].ItemID = 0 },
		"day 33 nepali":     func(s *Submission) { s.NepaliDate = "2081-04-33" },
		"month 13 nepali":   func(s *Submission) { s.NepaliDate = "2081-13-01" },
		"garbled nepali":    func(s *Submission) { s.NepaliDate = "yesterday" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			sub := testSubmission("PB-1", 10)
			mutate(&sub)
			_, _, err := svc.Post(context.Background(), testContext(), sub)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
	assert.Zero(t, repo.createCalls)
}

func TestPostInvalidatesAccountHistoryCache(t *testing.T) {
	repo := newMockRepo()
	cache := &mockCache{}
	svc := NewService(repo, cache)

	_, _, err := svc.Post(context.Background(), testContext(), testSubmission("PB-3", 42))
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, cache.invalidated)
}
