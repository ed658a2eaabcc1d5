package transactions

import (
	"context"

	"github.com/merobill/merobill/internal/settings"
)

// SettingsSource resolves the preference record gating history display.
type SettingsSource interface {
	ResolveForDisplay(ctx context.Context, companyID, userID, fiscalYearID int64) (settings.Settings, error)
}

// Gate decides whether historical transactions are surfaced for an
// item/account pair, and fetches them when enabled.
type Gate struct {
	settings SettingsSource
	repo     Repository
	cache    *Cache
	limit    int
}

// NewGate constructs a Gate. cache may be nil to disable per-session caching.
func NewGate(settingsSource SettingsSource, repo Repository, cache *Cache, limit int) *Gate {
	if limit <= 0 {
		limit = 20
	}
	return &Gate{settings: settingsSource, repo: repo, cache: cache, limit: limit}
}

// FetchRequest carries the resolved request context for one lookup.
type FetchRequest struct {
	SessionID    string
	CompanyID    int64
	UserID       int64
	FiscalYearID int64
	ItemID       int64
	AccountID    int64
	Class        Class
}

// Fetch applies the display preference for the class. When the flag is off
// it returns an empty result with DisplayEnabled=false without touching the
// transaction store; the UI uses the flag to tell "feature off" apart from
// "nothing found".
func (g *Gate) Fetch(ctx context.Context, req FetchRequest) (Result, error) {
	record, err := g.settings.ResolveForDisplay(ctx, req.CompanyID, req.UserID, req.FiscalYearID)
	if err != nil {
		return Result{}, err
	}

	if !flagForClass(record, req.Class) {
		return Result{Transactions: []Transaction{}, DisplayEnabled: false}, nil
	}

	key := CacheKey{SessionID: req.SessionID, ItemID: req.ItemID, AccountID: req.AccountID, Class: req.Class}
	if g.cache != nil && req.SessionID != "" {
		if cached, ok := g.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	txns, err := g.repo.ListRecent(ctx, Query{
		CompanyID:    req.CompanyID,
		FiscalYearID: req.FiscalYearID,
		ItemID:       req.ItemID,
		AccountID:    req.AccountID,
		Class:        req.Class,
		Limit:        g.limit,
	})
	if err != nil {
		return Result{}, err
	}
	if txns == nil {
		txns = []Transaction{}
	}

	res := Result{Transactions: txns, DisplayEnabled: true}
	if g.cache != nil && req.SessionID != "" {
		g.cache.Put(ctx, key, res)
	}
	return res, nil
}

// InvalidateAccount clears the session's cached lookups for an account.
func (g *Gate) InvalidateAccount(ctx context.Context, sessionID string, accountID int64) error {
	if g.cache == nil || sessionID == "" {
		return nil
	}
	return g.cache.InvalidateAccount(ctx, sessionID, accountID)
}

func flagForClass(s settings.Settings, class Class) bool {
	switch class {
	case ClassSales:
		return s.DisplayTransactions
	case ClassPurchase:
		return s.DisplayTransactionsForPurchase
	case ClassSalesReturn:
		return s.DisplayTransactionsForSalesReturn
	case ClassPurchaseReturn:
		return s.DisplayTransactionsForPurchaseReturn
	}
	return false
}
