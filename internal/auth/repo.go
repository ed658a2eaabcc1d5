package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merobill/merobill/internal/shared"
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	// RoleInCompany returns the user's role within a company, or
	// shared.ErrForbidden when the user is not a member.
	RoleInCompany(ctx context.Context, userID, companyID int64) (string, error)
	UpdateTheme(ctx context.Context, userID int64, theme string) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const userColumns = `id, name, email, password_hash, theme, is_active, created_at`

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrInvalidCredentials
	}
	return u, err
}

func (r *repository) FindByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	return u, err
}

func (r *repository) RoleInCompany(ctx context.Context, userID, companyID int64) (string, error) {
	var role string
	err := r.pool.QueryRow(ctx,
		`SELECT role FROM company_users WHERE user_id = $1 AND company_id = $2`, userID, companyID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.ErrForbidden
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

func (r *repository) UpdateTheme(ctx context.Context, userID int64, theme string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET theme = $2, updated_at = now() WHERE id = $1`, userID, theme)
	return err
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Theme, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
