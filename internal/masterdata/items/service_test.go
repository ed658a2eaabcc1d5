package items

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
	items     map[int64]Item
	txnCounts map[int64]int
	nextID    int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int64]Item), txnCounts: make(map[int64]int), nextID: 1}
}

func (m *mockRepo) List(ctx context.Context, f mdshared.ListFilters) ([]Item, int, error) {
	var out []Item
	for _, it := range m.items {
		if it.CompanyID == f.CompanyID {
			out = append(out, it)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(ctx context.Context, companyID, id int64) (Item, error) {
	it, ok := m.items[id]
	if !ok || it.CompanyID != companyID {
		return Item{}, shared.ErrNotFound
	}
	return it, nil
}

func (m *mockRepo) Create(ctx context.Context, item Item) (Item, error) {
	for _, it := range m.items {
		if it.CompanyID == item.CompanyID && it.Name == item.Name {
			return Item{}, shared.ErrDuplicate
		}
	}
	item.ID = m.nextID
	m.nextID++
	m.items[item.ID] = item
	return item, nil
}

func (m *mockRepo) Update(ctx context.Context, item Item) error {
	if _, ok := m.items[item.ID]; !ok {
		return shared.ErrNotFound
	}
	m.items[item.ID] = item
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, companyID, id int64) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockRepo) CountTransactionsUsing(ctx context.Context, companyID, id int64) (int, error) {
	return m.txnCounts[id], nil
}

func TestCreateRequiresNameAndNonNegativePrices(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Create(context.Background(), Item{CompanyID: 1, Name: "  "})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), Item{
		CompanyID:     1,
		Name:          "Wai Wai Noodles",
		PurchasePrice: decimal.NewFromInt(-1),
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	created, err := svc.Create(context.Background(), Item{
		CompanyID:     1,
		Name:          "Wai Wai Noodles",
		PurchasePrice: decimal.NewFromInt(18),
		SellingPrice:  decimal.NewFromInt(20),
		Vatable:       true,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Create(context.Background(), Item{CompanyID: 1, Name: "Rice"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Item{CompanyID: 1, Name: "Rice"})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestDeleteRefusesWhenTransactionsExist(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Item{CompanyID: 1, Name: "Oil"})
	require.NoError(t, err)
	repo.txnCounts[created.ID] = 4

	err = svc.Delete(context.Background(), 1, created.ID)
	require.ErrorIs(t, err, shared.ErrInUse)
	_, err = svc.Get(context.Background(), 1, created.ID)
	assert.NoError(t, err, "the item must survive a refused delete")

	repo.txnCounts[created.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), 1, created.ID))
}
