package units

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdshared "github.com/merobill/merobill/internal/masterdata/shared"
	"github.com/merobill/merobill/internal/shared"
)

type mockRepo struct {
	units      map[int64]Unit
	mains      map[int64]MainUnit
	itemCounts map[int64]int
	nextID     int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		units:      make(map[int64]Unit),
		mains:      make(map[int64]MainUnit),
		itemCounts: make(map[int64]int),
		nextID:     1,
	}
}

func (m *mockRepo) List(ctx context.Context, f mdshared.ListFilters) ([]Unit, int, error) {
	var out []Unit
	for _, u := range m.units {
		if u.CompanyID == f.CompanyID {
			out = append(out, u)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(ctx context.Context, companyID, id int64) (Unit, error) {
	u, ok := m.units[id]
	if !ok || u.CompanyID != companyID {
		return Unit{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) Create(ctx context.Context, unit Unit) (Unit, error) {
	for _, u := range m.units {
		if u.CompanyID == unit.CompanyID && u.Name == unit.Name {
			return Unit{}, shared.ErrDuplicate
		}
	}
	unit.ID = m.nextID
	m.nextID++
	m.units[unit.ID] = unit
	return unit, nil
}

func (m *mockRepo) Update(ctx context.Context, unit Unit) error {
	if _, ok := m.units[unit.ID]; !ok {
		return shared.ErrNotFound
	}
	m.units[unit.ID] = unit
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, companyID, id int64) error {
	if _, ok := m.units[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.units, id)
	return nil
}

func (m *mockRepo) CountItemsUsing(ctx context.Context, companyID, id int64) (int, error) {
	return m.itemCounts[id], nil
}

func (m *mockRepo) ListMain(ctx context.Context, f mdshared.ListFilters) ([]MainUnit, int, error) {
	var out []MainUnit
	for _, mu := range m.mains {
		if mu.CompanyID == f.CompanyID {
			out = append(out, mu)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) CreateMain(ctx context.Context, mu MainUnit) (MainUnit, error) {
	mu.ID = m.nextID
	m.nextID++
	m.mains[mu.ID] = mu
	return mu, nil
}

func (m *mockRepo) DeleteMain(ctx context.Context, companyID, id int64) error {
	delete(m.mains, id)
	return nil
}

func (m *mockRepo) CountUnitsUsingMain(ctx context.Context, companyID, id int64) (int, error) {
	n := 0
	for _, u := range m.units {
		if u.MainUnitID != nil && *u.MainUnitID == id {
			n++
		}
	}
	return n, nil
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Create(context.Background(), Unit{CompanyID: 1, Name: "  "})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateDuplicateName(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Create(context.Background(), Unit{CompanyID: 1, Name: "pcs"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), Unit{CompanyID: 1, Name: "pcs"})
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestCreateDerivedUnitNeedsPositiveFactor(t *testing.T) {
	svc := NewService(newMockRepo())
	main := int64(9)
	_, err := svc.Create(context.Background(), Unit{CompanyID: 1, Name: "carton", MainUnitID: &main})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), Unit{
		CompanyID: 1, Name: "carton", MainUnitID: &main, Factor: decimal.NewFromInt(12),
	})
	assert.NoError(t, err)
}

func TestDeleteInUseConflicts(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	unit, err := svc.Create(context.Background(), Unit{CompanyID: 1, Name: "pcs"})
	require.NoError(t, err)
	repo.itemCounts[unit.ID] = 3

	err = svc.Delete(context.Background(), 1, unit.ID)
	assert.ErrorIs(t, err, shared.ErrInUse)

	repo.itemCounts[unit.ID] = 0
	assert.NoError(t, svc.Delete(context.Background(), 1, unit.ID))
}

func TestDeleteMainInUseConflicts(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	mu, err := svc.CreateMain(context.Background(), MainUnit{CompanyID: 1, Name: "piece"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), Unit{
		CompanyID: 1, Name: "dozen", MainUnitID: &mu.ID, Factor: decimal.NewFromInt(12),
	})
	require.NoError(t, err)

	err = svc.DeleteMain(context.Background(), 1, mu.ID)
	assert.ErrorIs(t, err, shared.ErrInUse)
}
