package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merobill/merobill/internal/shared"
)

type mockRepository struct {
	records  map[Key]Settings
	nextID   int64
	getCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{records: make(map[Key]Settings), nextID: 1}
}

func (m *mockRepository) Get(ctx context.Context, key Key) (Settings, bool, error) {
	m.getCalls++
	rec, ok := m.records[key]
	return rec, ok, nil
}

func (m *mockRepository) Create(ctx context.Context, s Settings) (Settings, error) {
	key := Key{CompanyID: s.CompanyID, UserID: s.UserID}
	if s.FiscalYearID != nil {
		key.FiscalYearID = *s.FiscalYearID
	}
	if _, exists := m.records[key]; exists {
		return Settings{}, shared.ErrDuplicate
	}
	s.ID = m.nextID
	m.nextID++
	m.records[key] = s
	return s, nil
}

func (m *mockRepository) Upsert(ctx context.Context, key Key, patch Patch) (Settings, error) {
	rec, ok := m.records[key]
	if !ok {
		rec = Defaults(key)
		rec.ID = m.nextID
		m.nextID++
	}
	patch.apply(&rec)
	m.records[key] = rec
	return rec, nil
}

func boolPtr(v bool) *bool { return &v }

func TestGetReturnsDefaultsWithoutCreating(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	key := Key{CompanyID: 1, UserID: 2, FiscalYearID: 3}
	rec, err := svc.GetOrDefaults(context.Background(), key)
	require.NoError(t, err)

	assert.False(t, rec.RoundOffSales)
	assert.False(t, rec.DisplayTransactions)
	assert.False(t, rec.StoreManagement)
	assert.Empty(t, repo.records, "a read must never create a record")

	// A second read still finds nothing persisted.
	_, found, err := svc.Get(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpsertConvergence(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	key := Key{CompanyID: 1, UserID: 2, FiscalYearID: 3}
	patch := Patch{RoundOffSales: boolPtr(true), DisplayTransactions: boolPtr(true)}

	first, err := svc.Upsert(context.Background(), key, patch)
	require.NoError(t, err)
	second, err := svc.Upsert(context.Background(), key, patch)
	require.NoError(t, err)

	assert.True(t, second.RoundOffSales)
	assert.True(t, second.DisplayTransactions)
	assert.Equal(t, first.ID, second.ID, "record identity unchanged across upserts")
	assert.Equal(t, first.CompanyID, second.CompanyID)
	assert.Equal(t, first.UserID, second.UserID)
}

func TestUpsertMergesOnlyPatchedFields(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	key := Key{CompanyID: 1, UserID: 2, FiscalYearID: 3}

	_, err := svc.Upsert(context.Background(), key, Patch{RoundOffSales: boolPtr(true)})
	require.NoError(t, err)

	rec, err := svc.Upsert(context.Background(), key, Patch{DisplayTransactions: boolPtr(true)})
	require.NoError(t, err)

	assert.True(t, rec.RoundOffSales, "earlier flag must survive a disjoint patch")
	assert.True(t, rec.DisplayTransactions)
	assert.False(t, rec.RoundOffPurchase, "unset flags stay false")
}

func TestCreateDuplicateConflicts(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	fy := int64(3)
	rec := Settings{CompanyID: 1, UserID: 2, FiscalYearID: &fy}

	_, err := svc.Create(context.Background(), rec)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), rec)
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestUpsertEmptyPatchRejected(t *testing.T) {
	svc := NewService(newMockRepository())
	_, err := svc.Upsert(context.Background(), Key{CompanyID: 1, UserID: 2}, Patch{})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestResolveForDisplayFallsBackToLegacy(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	// Only a legacy record exists.
	legacyKey := Key{CompanyID: 1, UserID: 2}
	_, err := svc.Upsert(context.Background(), legacyKey, Patch{DisplayTransactions: boolPtr(true)})
	require.NoError(t, err)

	rec, err := svc.ResolveForDisplay(context.Background(), 1, 2, 3)
	require.NoError(t, err)
	assert.True(t, rec.DisplayTransactions, "legacy record must serve when no fiscal-scoped one exists")

	// A fiscal-scoped record shadows the legacy one.
	fyKey := Key{CompanyID: 1, UserID: 2, FiscalYearID: 3}
	_, err = svc.Upsert(context.Background(), fyKey, Patch{DisplayTransactions: boolPtr(false), RoundOffSales: boolPtr(true)})
	require.NoError(t, err)

	rec, err = svc.ResolveForDisplay(context.Background(), 1, 2, 3)
	require.NoError(t, err)
	assert.False(t, rec.DisplayTransactions)
}

func TestValidateKey(t *testing.T) {
	svc := NewService(newMockRepository())

	_, _, err := svc.Get(context.Background(), Key{UserID: 2})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, _, err = svc.Get(context.Background(), Key{CompanyID: 1})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
