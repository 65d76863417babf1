package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/infra/postgres"
	ports "github.com/mylearnapp/quiz-platform/internal/repository"
)

// AttemptRepository provides access to quiz attempts in the database.
type AttemptRepository struct {
	db postgres.DBTX
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(db postgres.DBTX) *AttemptRepository {
	return &AttemptRepository{db: db}
}

const attemptColumns = `a.id, a.user_id, a.quiz_id, a.start_time, a.end_time, a.score,
	a.total_questions, a.time_taken_seconds, a.status, a.version`

// Create inserts a new attempt and returns its ID.
func (r *AttemptRepository) Create(ctx context.Context, a *entities.QuizAttempt) (int64, error) {
	query := `
		INSERT INTO quiz_attempts (
			user_id, quiz_id, start_time, score,
			total_questions, status, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(
		ctx,
		query,
		a.UserID,
		a.QuizID,
		a.StartTime,
		a.Score,
		a.TotalQuestions,
		a.Status,
		a.Version,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create quiz attempt: %w", err)
	}

	return id, nil
}

// GetByID retrieves an attempt by its ID.
func (r *AttemptRepository) GetByID(ctx context.Context, id int64) (*entities.QuizAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM quiz_attempts a WHERE a.id = $1`

	a, err := scanAttempt(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("quiz attempt", id)
		}
		return nil, fmt.Errorf("get quiz attempt: %w", err)
	}

	return a, nil
}

// Update updates an attempt using optimistic locking.
func (r *AttemptRepository) Update(ctx context.Context, a *entities.QuizAttempt) error {
	query := `
		UPDATE quiz_attempts
		SET end_time = $1,
		    score = $2,
		    time_taken_seconds = $3,
		    status = $4,
		    version = version + 1
		WHERE id = $5 AND version = $6
	`

	result, err := r.db.Exec(
		ctx,
		query,
		a.EndTime,
		a.Score,
		a.TimeTakenSeconds,
		a.Status,
		a.ID,
		a.Version,
	)
	if err != nil {
		return fmt.Errorf("update quiz attempt: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrOptimisticLock
	}

	a.Version++

	return nil
}

func (r *AttemptRepository) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM quiz_attempts WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete quiz attempt: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *AttemptRepository) DeleteByQuiz(ctx context.Context, quizID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM quiz_attempts WHERE quiz_id = $1`, quizID)
	if err != nil {
		return 0, fmt.Errorf("delete quiz attempts: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *AttemptRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM quiz_attempts WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user attempts: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *AttemptRepository) ListByUser(ctx context.Context, userID int64) ([]*entities.QuizAttempt, error) {
	return r.list(ctx, `
		SELECT `+attemptColumns+`
		FROM quiz_attempts a
		WHERE a.user_id = $1
		ORDER BY a.start_time DESC, a.id DESC
	`, userID)
}

func (r *AttemptRepository) ListRecentByUser(ctx context.Context, userID int64, limit int) ([]*entities.QuizAttempt, error) {
	return r.list(ctx, `
		SELECT `+attemptColumns+`
		FROM quiz_attempts a
		WHERE a.user_id = $1
		ORDER BY a.start_time DESC, a.id DESC
		LIMIT $2
	`, userID, limit)
}

func (r *AttemptRepository) ListByQuiz(ctx context.Context, quizID int64) ([]*entities.QuizAttempt, error) {
	return r.list(ctx, `
		SELECT `+attemptColumns+`
		FROM quiz_attempts a
		WHERE a.quiz_id = $1
		ORDER BY a.start_time DESC, a.id DESC
	`, quizID)
}

func (r *AttemptRepository) ListByUserAndQuiz(ctx context.Context, userID, quizID int64) ([]*entities.QuizAttempt, error) {
	return r.list(ctx, `
		SELECT `+attemptColumns+`
		FROM quiz_attempts a
		WHERE a.user_id = $1 AND a.quiz_id = $2
		ORDER BY a.start_time DESC, a.id DESC
	`, userID, quizID)
}

// ListOverdue returns active attempts whose quiz time limit has elapsed.
func (r *AttemptRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entities.QuizAttempt, error) {
	return r.list(ctx, `
		SELECT `+attemptColumns+`
		FROM quiz_attempts a
		JOIN quizzes q ON q.id = a.quiz_id
		WHERE a.status = 'active'
		  AND q.time_limit_seconds > 0
		  AND a.start_time + make_interval(secs => q.time_limit_seconds + 1) <= $1
		ORDER BY a.start_time
		LIMIT $2
	`, now, limit)
}

func (r *AttemptRepository) list(ctx context.Context, query string, args ...any) ([]*entities.QuizAttempt, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quiz attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*entities.QuizAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}

func scanAttempt(row pgx.Row) (*entities.QuizAttempt, error) {
	var a entities.QuizAttempt
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.QuizID,
		&a.StartTime,
		&a.EndTime,
		&a.Score,
		&a.TotalQuestions,
		&a.TimeTakenSeconds,
		&a.Status,
		&a.Version,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
