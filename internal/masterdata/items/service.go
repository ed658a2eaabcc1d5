package items

import (
	"context"
	"fmt"
	"strings"

	mdshared "github.com/merobill/merobill/internal/masterdata/shared"
	"github.com/merobill/merobill/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Item, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Item, error) {
	if id <= 0 {
		return Item{}, fmt.Errorf("invalid item ID: %w", shared.ErrValidation)
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, item Item) (Item, error) {
	if err := s.validate(item); err != nil {
		return Item{}, err
	}
	return s.repo.Create(ctx, item)
}

func (s *Service) Update(ctx context.Context, item Item) error {
	if item.ID <= 0 {
		return fmt.Errorf("invalid item ID: %w", shared.ErrValidation)
	}
	if err := s.validate(item); err != nil {
		return err
	}
	return s.repo.Update(ctx, item)
}

// Delete refuses when transactions reference the item.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid item ID: %w", shared.ErrValidation)
	}
	n, err := s.repo.CountTransactionsUsing(ctx, companyID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("cannot delete item, %d transaction(s) reference it: %w", n, shared.ErrInUse)
	}
	return s.repo.Delete(ctx, companyID, id)
}

func (s *Service) validate(item Item) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("item name is required: %w", shared.ErrValidation)
	}
	if item.PurchasePrice.IsNegative() || item.SellingPrice.IsNegative() {
		return fmt.Errorf("prices cannot be negative: %w", shared.ErrValidation)
	}
	return nil
}
