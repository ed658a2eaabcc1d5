package compositions

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

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Composition, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Composition, error) {
	if id <= 0 {
		return Composition{}, fmt.Errorf("invalid composition ID: %w", shared.ErrValidation)
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, c Composition) (Composition, error) {
	if strings.TrimSpace(c.Name) == "" {
		return Composition{}, fmt.Errorf("composition name is required: %w", shared.ErrValidation)
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, c Composition) error {
	if c.ID <= 0 {
		return fmt.Errorf("invalid composition ID: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("composition name is required: %w", shared.ErrValidation)
	}
	return s.repo.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid composition ID: %w", shared.ErrValidation)
	}
	n, err := s.repo.CountItemsUsing(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("cannot delete composition, %d item(s) use it: %w", n, shared.ErrInUse)
	}
	return s.repo.Delete(ctx, companyID, id)
}
