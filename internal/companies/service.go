package companies

import (
	"context"
	"fmt"
	"strings"

	"github.com/merobill/merobill/internal/shared"
)

// MembershipSource answers which role a user holds within a company.
type MembershipSource interface {
	RoleInCompany(ctx context.Context, userID, companyID int64) (string, error)
}

type Service struct {
	repo    Repository
	members MembershipSource
}

func NewService(repo Repository, members MembershipSource) *Service {
	return &Service{repo: repo, members: members}
}

func (s *Service) Get(ctx context.Context, id int64) (Company, error) {
	if id <= 0 {
		return Company{}, fmt.Errorf("invalid company ID: %w", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Company, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) Register(ctx context.Context, c Company, ownerID int64) (Company, error) {
	if err := s.validate(c); err != nil {
		return Company{}, err
	}
	return s.repo.Create(ctx, c, ownerID)
}

// Select verifies membership and returns the company; the handler records
// the choice on the session.
func (s *Service) Select(ctx context.Context, userID, companyID int64) (Company, string, error) {
	role, err := s.members.RoleInCompany(ctx, userID, companyID)
	if err != nil {
		return Company{}, "", err
	}
	company, err := s.repo.Get(ctx, companyID)
	if err != nil {
		return Company{}, "", err
	}
	return company, role, nil
}

// SetCurrentFiscalYear links the company's default fiscal year.
func (s *Service) SetCurrentFiscalYear(ctx context.Context, companyID, fiscalYearID int64) error {
	if fiscalYearID <= 0 {
		return fmt.Errorf("invalid fiscal year ID: %w", shared.ErrValidation)
	}
	return s.repo.SetCurrentFiscalYear(ctx, companyID, fiscalYearID)
}

func (s *Service) validate(c Company) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("company name is required: %w", shared.ErrValidation)
	}
	switch c.TradeType {
	case TradeTypeRetailer, TradeTypeWholesaler, TradeTypeDistributor:
	default:
		return fmt.Errorf("unknown trade type %q: %w", c.TradeType, shared.ErrValidation)
	}
	return nil
}
