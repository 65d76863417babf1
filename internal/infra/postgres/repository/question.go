package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/infra/postgres"
)

type QuestionRepository struct {
	db postgres.DBTX
}

func NewQuestionRepository(db postgres.DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) Create(ctx context.Context, q *entities.Question) (int64, error) {
	query := `INSERT INTO questions (quiz_id, text, position) VALUES ($1, $2, $3) RETURNING id`

	var id int64
	if err := r.db.QueryRow(ctx, query, q.QuizID, q.Text, q.Position).Scan(&id); err != nil {
		return 0, fmt.Errorf("create question: %w", err)
	}

	return id, nil
}

func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*entities.Question, error) {
	var q entities.Question
	err := r.db.QueryRow(ctx, `SELECT id, quiz_id, text, position FROM questions WHERE id = $1`, id).
		Scan(&q.ID, &q.QuizID, &q.Text, &q.Position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("question", id)
		}
		return nil, fmt.Errorf("get question: %w", err)
	}

	return &q, nil
}

// List returns every question ordered by quiz and position.
func (r *QuestionRepository) List(ctx context.Context) ([]*entities.Question, error) {
	return r.list(ctx, `
		SELECT id, quiz_id, text, position
		FROM questions
		ORDER BY quiz_id, position, id
	`)
}

func (r *QuestionRepository) ListByQuiz(ctx context.Context, quizID int64) ([]*entities.Question, error) {
	return r.list(ctx, `
		SELECT id, quiz_id, text, position
		FROM questions
		WHERE quiz_id = $1
		ORDER BY position, id
	`, quizID)
}

func (r *QuestionRepository) CountByQuiz(ctx context.Context, quizID int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM questions WHERE quiz_id = $1`, quizID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}

	return n, nil
}

func (r *QuestionRepository) UpdateText(ctx context.Context, id int64, text string) error {
	tag, err := r.db.Exec(ctx, `UPDATE questions SET text = $1 WHERE id = $2`, text, id)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("question", id)
	}

	return nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}

	return nil
}

func (r *QuestionRepository) DeleteByQuiz(ctx context.Context, quizID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM questions WHERE quiz_id = $1`, quizID)
	if err != nil {
		return 0, fmt.Errorf("delete quiz questions: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *QuestionRepository) list(ctx context.Context, query string, args ...any) ([]*entities.Question, error) {
	rows, err := r.db.Query(ctx, query, args...)
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
