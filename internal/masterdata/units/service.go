package units

import (
	"context"
	"fmt"

	mdshared "github.com/merobill/merobill/internal/masterdata/shared"
	"github.com/merobill/merobill/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Unit, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Unit, error) {
	if id <= 0 {
		return Unit{}, fmt.Errorf("invalid unit ID: %w", shared.ErrValidation)
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, unit Unit) (Unit, error) {
	if err := s.validate(unit); err != nil {
		return Unit{}, err
	}
	return s.repo.Create(ctx, unit)
}

func (s *Service) Update(ctx context.Context, unit Unit) error {
	if unit.ID <= 0 {
		return fmt.Errorf("invalid unit ID: %w", shared.ErrValidation)
	}
	if err := s.validate(unit); err != nil {
		return err
	}
	return s.repo.Update(ctx, unit)
}

// Delete pre-checks references so the caller gets a 409 rather than a
// database constraint failure.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid unit ID: %w", shared.ErrValidation)
	}
	n, err := s.repo.CountItemsUsing(ctx, companyID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("cannot delete unit, %d item(s) use it: %w", n, shared.ErrInUse)
	}
	return s.repo.Delete(ctx, companyID, id)
}

func (s *Service) ListMain(ctx context.Context, filters mdshared.ListFilters) ([]MainUnit, int, error) {
	filters.Normalize()
	return s.repo.ListMain(ctx, filters)
}

func (s *Service) CreateMain(ctx context.Context, mu MainUnit) (MainUnit, error) {
	if err := validateName(mu.Name); err != nil {
		return MainUnit{}, err
	}
	return s.repo.CreateMain(ctx, mu)
}

func (s *Service) DeleteMain(ctx context.Context, companyID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid main unit ID: %w", shared.ErrValidation)
	}
	n, err := s.repo.CountUnitsUsingMain(ctx, companyID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("cannot delete main unit, %d unit(s) derive from it: %w", n, shared.ErrInUse)
	}
	return s.repo.DeleteMain(ctx, companyID, id)
}
