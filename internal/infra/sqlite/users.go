package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
)

type userRepo struct {
	db DBTX
}

const userColumns = `id, clerk_id, email, first_name, last_name, role, created_at`

func (r *userRepo) Create(ctx context.Context, u *entities.User) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (clerk_id, email, first_name, last_name, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ClerkID, u.Email, u.FirstName, u.LastName, string(u.Role), toMillis(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrClerkIDTaken
		}
		return 0, fmt.Errorf("create user: %w", err)
	}

	return res.LastInsertId()
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetByClerkID(ctx context.Context, clerkID string) (*entities.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE clerk_id = ?`, clerkID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user", clerkID)
		}
		return nil, fmt.Errorf("get user by clerk id: %w", err)
	}
	return u, nil
}

func (r *userRepo) ExistsByClerkID(ctx context.Context, clerkID string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE clerk_id = ?`, clerkID).Scan(&n); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return n > 0, nil
}

func (r *userRepo) UpdateRole(ctx context.Context, id int64, role entities.Role) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(role), id)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	if rowsAffected(res) == 0 {
		return apperr.NotFound("user", id)
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*entities.User, error) {
	var (
		u       entities.User
		role    string
		created int64
	)
	if err := row.Scan(&u.ID, &u.ClerkID, &u.Email, &u.FirstName, &u.LastName, &role, &created); err != nil {
		return nil, err
	}
	u.Role = entities.Role(role)
	u.CreatedAt = fromMillis(created)
	return &u, nil
}
