package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merobill/merobill/internal/settings"
)

type stubSettings struct {
	record settings.Settings
	err    error
}

func (s *stubSettings) ResolveForDisplay(ctx context.Context, companyID, userID, fiscalYearID int64) (settings.Settings, error) {
	if s.err != nil {
		return settings.Settings{}, s.err
	}
	return s.record, nil
}

type countingRepo struct {
	calls int
	txns  []Transaction
}

func (r *countingRepo) ListRecent(ctx context.Context, q Query) ([]Transaction, error) {
	r.calls++
	if q.Limit < len(r.txns) {
		return r.txns[:q.Limit], nil
	}
	return r.txns, nil
}

func testRequest(class Class) FetchRequest {
	return FetchRequest{
		CompanyID:    10,
		UserID:       7,
		FiscalYearID: 2,
		ItemID:       5,
		AccountID:    3,
		Class:        class,
	}
}

func TestGateOffByDefault(t *testing.T) {
	repo := &countingRepo{}
	gate := NewGate(&stubSettings{}, repo, nil, 20)

	res, err := gate.Fetch(context.Background(), testRequest(ClassSales))
	require.NoError(t, err)

	assert.False(t, res.DisplayEnabled)
	assert.Empty(t, res.Transactions)
	assert.NotNil(t, res.Transactions, "empty slice, not null, so the UI can render")
	assert.Equal(t, 0, repo.calls, "store must not be queried when the flag is off")
}

func TestGateClassFlagMapping(t *testing.T) {
	record := settings.Settings{DisplayTransactionsForPurchase: true}
	repo := &countingRepo{txns: []Transaction{{ID: 1}}}
	gate := NewGate(&stubSettings{record: record}, repo, nil, 20)

	res, err := gate.Fetch(context.Background(), testRequest(ClassPurchase))
	require.NoError(t, err)
	assert.True(t, res.DisplayEnabled)
	assert.Len(t, res.Transactions, 1)

	// Sales stays gated off by the same record.
	res, err = gate.Fetch(context.Background(), testRequest(ClassSales))
	require.NoError(t, err)
	assert.False(t, res.DisplayEnabled)
	assert.Equal(t, 1, repo.calls)
}

func TestGateLimitsToTwenty(t *testing.T) {
	txns := make([]Transaction, 30)
	for i := range txns {
		txns[i] = Transaction{
			ID:     int64(i + 1),
			Date:   time.Date(2026, 1, 30-i, 0, 0, 0, 0, time.UTC),
			Amount: decimal.NewFromInt(int64(i)),
		}
	}
	repo := &countingRepo{txns: txns}
	gate := NewGate(&stubSettings{record: settings.Settings{DisplayTransactions: true}}, repo, nil, 20)

	res, err := gate.Fetch(context.Background(), testRequest(ClassSales))
	require.NoError(t, err)
	assert.Len(t, res.Transactions, 20)
}

func TestGateCachesPerSessionAndInvalidatesOnAccountChange(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)

	repo := &countingRepo{txns: []Transaction{{ID: 42}}}
	gate := NewGate(&stubSettings{record: settings.Settings{DisplayTransactions: true}}, repo, cache, 20)

	req := testRequest(ClassSales)
	req.SessionID = "sess-1"

	_, err := gate.Fetch(context.Background(), req)
	require.NoError(t, err)
	_, err = gate.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls, "second fetch must be served from cache")

	// Different account never shares entries.
	other := req
	other.AccountID = 99
	_, err = gate.Fetch(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)

	// Account change invalidates that account's entries only.
	require.NoError(t, gate.InvalidateAccount(context.Background(), "sess-1", req.AccountID))
	_, err = gate.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls)

	_, err = gate.Fetch(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls, "other account's cache entry must survive")
}

func TestGateKeepsVoucherNepaliDateThroughCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)

	repo := &countingRepo{txns: []Transaction{{
		ID:         42,
		Date:       time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC),
		NepaliDate: "2081-04-01",
	}}}
	gate := NewGate(&stubSettings{record: settings.Settings{DisplayTransactions: true}}, repo, cache, 20)

	req := testRequest(ClassSales)
	req.SessionID = "sess-2"

	res, err := gate.Fetch(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "2081-04-01", res.Transactions[0].NepaliDate)

	// Cached replay carries the stored date, not a recomputed one.
	res, err = gate.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, "2081-04-01", res.Transactions[0].NepaliDate)
}

func TestParseClass(t *testing.T) {
	for _, valid := range []string{"Sales", "Purchase", "SalesReturn", "PurchaseReturn"} {
		_, err := ParseClass(valid)
		assert.NoError(t, err, valid)
	}
	_, err := ParseClass("Payments")
	assert.Error(t, err)
}
