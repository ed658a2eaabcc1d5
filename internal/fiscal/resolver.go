package fiscal

import (
	"context"
	"errors"

	"github.com/merobill/merobill/internal/shared"
)

// Resolver produces the authoritative fiscal-year context for a request.
//
// Precedence is fixed: a snapshot already cached on the session wins when its
// id still resolves; otherwise the company's linked current fiscal year is
// adopted and cached back onto the session. When neither source yields a
// year the resolution fails with shared.ErrNoFiscalYear and callers must
// respond 400 without performing any mutation.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the fiscal snapshot for the session's company. Successful
// resolution writes the snapshot into the session; repeated calls converge
// to the same cached value.
func (rs *Resolver) Resolve(ctx context.Context, sess *shared.Session) (*shared.FiscalSnapshot, error) {
	if sess == nil || sess.Company() == 0 {
		return nil, shared.ErrNoCompany
	}

	if cached := sess.Fiscal(); cached != nil {
		year, err := rs.repo.Get(ctx, cached.ID)
		if err == nil {
			snap := year.Snapshot()
			sess.SetFiscal(snap)
			return snap, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		// Stale session reference; fall through to the company's year.
	}

	currentID, err := rs.repo.CurrentForCompany(ctx, sess.Company())
	if err != nil {
		return nil, err
	}
	if currentID == 0 {
		return nil, shared.ErrNoFiscalYear
	}

	year, err := rs.repo.Get(ctx, currentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNoFiscalYear
		}
		return nil, err
	}

	snap := year.Snapshot()
	sess.SetFiscal(snap)
	return snap, nil
}

// Switch adopts an explicitly chosen fiscal year, verifying it belongs to
// the session's company before caching it.
func (rs *Resolver) Switch(ctx context.Context, sess *shared.Session, yearID int64) (*shared.FiscalSnapshot, error) {
	if sess == nil || sess.Company() == 0 {
		return nil, shared.ErrNoCompany
	}
	year, err := rs.repo.Get(ctx, yearID)
	if err != nil {
		return nil, err
	}
	if year.CompanyID != sess.Company() {
		return nil, shared.ErrForbidden
	}
	snap := year.Snapshot()
	sess.SetFiscal(snap)
	return snap, nil
}
