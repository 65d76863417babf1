package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
)

type attemptRepo struct {
	db DBTX
}

const attemptColumns = `a.id, a.user_id, a.quiz_id, a.start_time, a.end_time, a.score,
	a.total_questions, a.time_taken_seconds, a.status, a.version`

func (r *attemptRepo) Create(ctx context.Context, a *entities.QuizAttempt) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO quiz_attempts (user_id, quiz_id, start_time, score, total_questions, status, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.QuizID, toMillis(a.StartTime), a.Score, a.TotalQuestions, string(a.Status), a.Version)
	if err != nil {
		return 0, fmt.Errorf("create quiz attempt: %w", err)
	}
	return res.LastInsertId()
}

func (r *attemptRepo) GetByID(ctx context.Context, id int64) (*entities.QuizAttempt, error) {
	a, err := scanAttempt(r.db.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM quiz_attempts a WHERE a.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("quiz attempt", id)
		}
		return nil, fmt.Errorf("get quiz attempt: %w", err)
	}
	return a, nil
}

func (r *attemptRepo) Update(ctx context.Context, a *entities.QuizAttempt) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE quiz_attempts
		SET end_time = ?, score = ?, time_taken_seconds = ?, status = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		nullMillis(a.EndTime), a.Score, nullID(a.TimeTakenSeconds), string(a.Status), a.ID, a.Version)
	if err != nil {
		return fmt.Errorf("update quiz attempt: %w", err)
	}
	if rowsAffected(res) == 0 {
		return repository.ErrOptimisticLock
	}

	a.Version++
	return nil
}

func (r *attemptRepo) Delete(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, "delete quiz attempt", `DELETE FROM quiz_attempts WHERE id = ?`, id)
}

func (r *attemptRepo) DeleteByQuiz(ctx context.Context, quizID int64) (int64, error) {
	return r.exec(ctx, "delete quiz attempts", `DELETE FROM quiz_attempts WHERE quiz_id = ?`, quizID)
}

func (r *attemptRepo) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	return r.exec(ctx, "delete user attempts", `DELETE FROM quiz_attempts WHERE user_id = ?`, userID)
}

func (r *attemptRepo) ListByUser(ctx context.Context, userID int64) ([]*entities.QuizAttempt, error) {
	return r.list(ctx, `SELECT `+attemptColumns+` FROM quiz_attempts a
		WHERE a.user_id = ? ORDER BY a.start_time DESC, a.id DESC`, userID)
}

func (r *attemptRepo) ListRecentByUser(ctx context.Context, userID int64, limit int) ([]*entities.QuizAttempt, error) {
	return r.list(ctx, `SELECT `+attemptColumns+` FROM quiz_attempts a
		WHERE a.user_id = ? ORDER BY a.start_time DESC, a.id DESC LIMIT ?`, userID, limit)
}

func (r *attemptRepo) ListByQuiz(ctx context.Context, quizID int64) ([]*entities.QuizAttempt, error) {
	return r.list(ctx, `SELECT `+attemptColumns+` FROM quiz_attempts a
		WHERE a.quiz_id = ? ORDER BY a.start_time DESC, a.id DESC`, quizID)
}

func (r *attemptRepo) ListByUserAndQuiz(ctx context.Context, userID, quizID int64) ([]*entities.QuizAttempt, error) {
	return r.list(ctx, `SELECT `+attemptColumns+` FROM quiz_attempts a
		WHERE a.user_id = ? AND a.quiz_id = ? ORDER BY a.start_time DESC, a.id DESC`, userID, quizID)
}

func (r *attemptRepo) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entities.QuizAttempt, error) {
	return r.list(ctx, `
		SELECT `+attemptColumns+`
		FROM quiz_attempts a
		JOIN quizzes q ON q.id = a.quiz_id
		WHERE a.status = 'active'
		  AND q.time_limit_seconds > 0
		  AND a.start_time + (q.time_limit_seconds + 1) * 1000 <= ?
		ORDER BY a.start_time
		LIMIT ?`, toMillis(now), limit)
}

func (r *attemptRepo) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected(res), nil
}

func (r *attemptRepo) list(ctx context.Context, query string, args ...any) ([]*entities.QuizAttempt, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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

func scanAttempt(row scanner) (*entities.QuizAttempt, error) {
	var (
		a          entities.QuizAttempt
		start      int64
		end, taken sql.NullInt64
		status     string
	)
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.QuizID,
		&start,
		&end,
		&a.Score,
		&a.TotalQuestions,
		&taken,
		&status,
		&a.Version,
	)
	if err != nil {
		return nil, err
	}
	a.StartTime = fromMillis(start)
	a.EndTime = timePtr(end)
	a.TimeTakenSeconds = idPtr(taken)
	a.Status = entities.AttemptStatus(status)
	return &a, nil
}
