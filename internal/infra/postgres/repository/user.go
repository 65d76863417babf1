package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/infra/postgres"
	ports "github.com/mylearnapp/quiz-platform/internal/repository"
)

// UserRepository provides access to users in the database.
type UserRepository struct {
	db postgres.DBTX
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db postgres.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, clerk_id, email, first_name, last_name, role, created_at`

// Create inserts a user and returns its ID.
func (r *UserRepository) Create(ctx context.Context, u *entities.User) (int64, error) {
	query := `
		INSERT INTO users (clerk_id, email, first_name, last_name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query, u.ClerkID, u.Email, u.FirstName, u.LastName, u.Role, u.CreatedAt).Scan(&id)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return 0, ports.ErrClerkIDTaken
		}
		return 0, fmt.Errorf("create user: %w", err)
	}

	return id, nil
}

// GetByID returns the user with the given ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return u, nil
}

// GetByClerkID returns the user with the given external ID.
func (r *UserRepository) GetByClerkID(ctx context.Context, clerkID string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE clerk_id = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user", clerkID)
		}
		return nil, fmt.Errorf("get user by clerk id: %w", err)
	}

	return u, nil
}

// ExistsByClerkID reports whether a user with the external ID exists.
func (r *UserRepository) ExistsByClerkID(ctx context.Context, clerkID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE clerk_id = $1)`, clerkID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return exists, nil
}

// UpdateRole changes the role of a user.
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role entities.Role) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user", id)
	}

	return nil
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	return nil
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	if err := row.Scan(&u.ID, &u.ClerkID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
