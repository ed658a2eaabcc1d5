package accounts

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

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Account, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Account, error) {
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, a Account) (Account, error) {
	if err := validate(&a); err != nil {
		return Account{}, err
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) Update(ctx context.Context, a Account) error {
	if err := validate(&a); err != nil {
		return err
	}
	return s.repo.Update(ctx, a)
}

// Delete refuses to remove an account that still appears in transaction
// history.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	n, err := s.repo.CountTransactionsUsing(ctx, companyID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("account is referenced by %d transactions: %w", n, shared.ErrInUse)
	}
	return s.repo.Delete(ctx, companyID, id)
}

func validate(a *Account) error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return fmt.Errorf("account name is required: %w", shared.ErrValidation)
	}
	if a.AccountType == "" {
		a.AccountType = TypeSupplier
	}
	if !validType(a.AccountType) {
		return fmt.Errorf("account type must be supplier, customer or both: %w", shared.ErrValidation)
	}
	return nil
}
