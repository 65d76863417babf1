package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
)

type questionRepo struct {
	db DBTX
}

func (r *questionRepo) Create(ctx context.Context, q *entities.Question) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO questions (quiz_id, text, position) VALUES (?, ?, ?)`,
		q.QuizID, q.Text, q.Position)
	if err != nil {
		return 0, fmt.Errorf("create question: %w", err)
	}
	return res.LastInsertId()
}

func (r *questionRepo) GetByID(ctx context.Context, id int64) (*entities.Question, error) {
	var q entities.Question
	err := r.db.QueryRowContext(ctx, `SELECT id, quiz_id, text, position FROM questions WHERE id = ?`, id).
		Scan(&q.ID, &q.QuizID, &q.Text, &q.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("question", id)
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	return &q, nil
}

func (r *questionRepo) List(ctx context.Context) ([]*entities.Question, error) {
	return r.list(ctx, `
		SELECT id, quiz_id, text, position
		FROM questions
		ORDER BY quiz_id, position, id`)
}

func (r *questionRepo) ListByQuiz(ctx context.Context, quizID int64) ([]*entities.Question, error) {
	return r.list(ctx, `
		SELECT id, quiz_id, text, position
		FROM questions
		WHERE quiz_id = ?
		ORDER BY position, id`, quizID)
}

func (r *questionRepo) CountByQuiz(ctx context.Context, quizID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions WHERE quiz_id = ?`, quizID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func (r *questionRepo) UpdateText(ctx context.Context, id int64, text string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE questions SET text = ? WHERE id = ?`, text, id)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if rowsAffected(res) == 0 {
		return apperr.NotFound("question", id)
	}
	return nil
}

func (r *questionRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

func (r *questionRepo) DeleteByQuiz(ctx context.Context, quizID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE quiz_id = ?`, quizID)
	if err != nil {
		return 0, fmt.Errorf("delete quiz questions: %w", err)
	}
	return rowsAffected(res), nil
}

func (r *questionRepo) list(ctx context.Context, query string, args ...any) ([]*entities.Question, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []*entities.Question
	for rows.Next() {
		var q entities.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.Position); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, &q)
	}
	return questions, rows.Err()
}
