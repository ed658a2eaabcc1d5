package fiscal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merobill/merobill/internal/shared"
)

type mockRepository struct {
	years      map[int64]Year
	current    map[int64]int64
	getCalls   int
	currentErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		years:   make(map[int64]Year),
		current: make(map[int64]int64),
	}
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Year, error) {
	m.getCalls++
	y, ok := m.years[id]
	if !ok {
		return Year{}, shared.ErrNotFound
	}
	return y, nil
}

func (m *mockRepository) ListByCompany(ctx context.Context, companyID int64) ([]Year, error) {
	var out []Year
	for _, y := range m.years {
		if y.CompanyID == companyID {
			out = append(out, y)
		}
	}
	return out, nil
}

func (m *mockRepository) CurrentForCompany(ctx context.Context, companyID int64) (int64, error) {
	if m.currentErr != nil {
		return 0, m.currentErr
	}
	return m.current[companyID], nil
}

func testYear(id, companyID int64, name string) Year {
	return Year{
		ID:         id,
		CompanyID:  companyID,
		Name:       name,
		StartDate:  time.Date(2081, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2082, 3, 31, 0, 0, 0, 0, time.UTC),
		DateFormat: "nepali",
		IsActive:   true,
	}
}

func sessionWithCompany(companyID int64) *shared.Session {
	sess := &shared.Session{}
	sess.SetCompany(companyID)
	return sess
}

func TestResolveSessionCacheWins(t *testing.T) {
	repo := newMockRepository()
	repo.years[1] = testYear(1, 10, "2080/81")
	repo.years[2] = testYear(2, 10, "2081/82")
	repo.current[10] = 2

	sess := sessionWithCompany(10)
	sess.SetFiscal(&shared.FiscalSnapshot{ID: 1})

	snap, err := NewResolver(repo).Resolve(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.ID, "cached session year must take precedence over company year")
	assert.Equal(t, "2080/81", snap.Name)
}

func TestResolveFallsBackToCompanyAndCaches(t *testing.T) {
	repo := newMockRepository()
	repo.years[2] = testYear(2, 10, "2081/82")
	repo.current[10] = 2

	// Session references a year that no longer exists.
	sess := sessionWithCompany(10)
	sess.SetFiscal(&shared.FiscalSnapshot{ID: 99})

	snap, err := NewResolver(repo).Resolve(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.ID)

	require.NotNil(t, sess.Fiscal())
	assert.Equal(t, int64(2), sess.Fiscal().ID, "resolved year must be re-cached into the session")
}

func TestResolveNoFiscalYearFails(t *testing.T) {
	repo := newMockRepository()
	sess := sessionWithCompany(10)

	_, err := NewResolver(repo).Resolve(context.Background(), sess)
	assert.ErrorIs(t, err, shared.ErrNoFiscalYear)
	assert.Nil(t, sess.Fiscal(), "failed resolution must not cache anything")
}

func TestResolveNoCompany(t *testing.T) {
	repo := newMockRepository()
	_, err := NewResolver(repo).Resolve(context.Background(), &shared.Session{})
	assert.ErrorIs(t, err, shared.ErrNoCompany)
}

func TestResolveConverges(t *testing.T) {
	repo := newMockRepository()
	repo.years[2] = testYear(2, 10, "2081/82")
	repo.current[10] = 2

	sess := sessionWithCompany(10)
	r := NewResolver(repo)

	first, err := r.Resolve(context.Background(), sess)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestSwitchRejectsForeignYear(t *testing.T) {
	repo := newMockRepository()
	repo.years[5] = testYear(5, 77, "2081/82")

	sess := sessionWithCompany(10)
	_, err := NewResolver(repo).Switch(context.Background(), sess, 5)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
