package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/merobill/merobill/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Login verifies credentials and returns the user on success.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Current returns the user for a session id.
func (s *Service) Current(ctx context.Context, userID int64) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// RoleInCompany delegates membership lookup.
func (s *Service) RoleInCompany(ctx context.Context, userID, companyID int64) (string, error) {
	return s.repo.RoleInCompany(ctx, userID, companyID)
}

// SetTheme persists the user's UI theme preference.
func (s *Service) SetTheme(ctx context.Context, userID int64, theme string) error {
	if theme != "light" && theme != "dark" {
		return shared.ErrValidation
	}
	return s.repo.UpdateTheme(ctx, userID, theme)
}
