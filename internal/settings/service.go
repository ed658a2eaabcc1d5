package settings

import (
	"context"
	"fmt"

	"github.com/merobill/merobill/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the record for key together with a found flag. Missing records
// are not an error and are never created by a read.
func (s *Service) Get(ctx context.Context, key Key) (Settings, bool, error) {
	if err := validateKey(key); err != nil {
		return Settings{}, false, err
	}
	return s.repo.Get(ctx, key)
}

// GetOrDefaults returns the stored record or all-false defaults when absent.
func (s *Service) GetOrDefaults(ctx context.Context, key Key) (Settings, error) {
	rec, found, err := s.Get(ctx, key)
	if err != nil {
		return Settings{}, err
	}
	if !found {
		return Defaults(key), nil
	}
	return rec, nil
}

// Create explicitly inserts a record; duplicates surface shared.ErrDuplicate.
func (s *Service) Create(ctx context.Context, rec Settings) (Settings, error) {
	if err := validateKey(Key{CompanyID: rec.CompanyID, UserID: rec.UserID}); err != nil {
		return Settings{}, err
	}
	return s.repo.Create(ctx, rec)
}

// Upsert merges patch into the record for key, creating it on first write.
func (s *Service) Upsert(ctx context.Context, key Key, patch Patch) (Settings, error) {
	if err := validateKey(key); err != nil {
		return Settings{}, err
	}
	if patch.IsEmpty() {
		return Settings{}, fmt.Errorf("empty settings patch: %w", shared.ErrValidation)
	}
	return s.repo.Upsert(ctx, key, patch)
}

// ResolveForDisplay fetches the fiscal-scoped record, falling back to the
// legacy (company, user) record when none exists. Display preferences written
// before fiscal-year scoping keep working through this path.
func (s *Service) ResolveForDisplay(ctx context.Context, companyID, userID, fiscalYearID int64) (Settings, error) {
	key := Key{CompanyID: companyID, UserID: userID, FiscalYearID: fiscalYearID}
	rec, found, err := s.Get(ctx, key)
	if err != nil {
		return Settings{}, err
	}
	if found {
		return rec, nil
	}
	legacy := Key{CompanyID: companyID, UserID: userID}
	rec, found, err = s.Get(ctx, legacy)
	if err != nil {
		return Settings{}, err
	}
	if !found {
		return Defaults(key), nil
	}
	return rec, nil
}

func validateKey(key Key) error {
	if key.CompanyID <= 0 {
		return fmt.Errorf("company is required: %w", shared.ErrValidation)
	}
	if key.UserID <= 0 {
		return fmt.Errorf("user is required: %w", shared.ErrValidation)
	}
	return nil
}
