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

type OptionRepository struct {
	db postgres.DBTX
}

func NewOptionRepository(db postgres.DBTX) *OptionRepository {
	return &OptionRepository{db: db}
}

// CreateBatch inserts the options and sets their IDs.
func (r *OptionRepository) CreateBatch(ctx context.Context, options []*entities.Option) error {
	if len(options) == 0 {
		return nil
	}

	query := `INSERT INTO options (question_id, text, is_correct) VALUES ($1, $2, $3) RETURNING id`

	batch := &pgx.Batch{}
	for _, o := range options {
		batch.Queue(query, o.QuestionID, o.Text, o.IsCorrect)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for _, o := range options {
		if err := results.QueryRow().Scan(&o.ID); err != nil {
			return fmt.Errorf("create option: %w", err)
		}
	}

	return nil
}

func (r *OptionRepository) GetByID(ctx context.Context, id int64) (*entities.Option, error) {
	var o entities.Option
	err := r.db.QueryRow(ctx, `SELECT id, question_id, text, is_correct FROM options WHERE id = $1`, id).
		Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("option", id)
		}
		return nil, fmt.Errorf("get option: %w", err)
	}

	return &o, nil
}

func (r *OptionRepository) List(ctx context.Context) ([]*entities.Option, error) {
	return r.list(ctx, `SELECT id, question_id, text, is_correct FROM options ORDER BY question_id, id`)
}

func (r *OptionRepository) ListByQuestion(ctx context.Context, questionID int64) ([]*entities.Option, error) {
	return r.list(ctx, `
		SELECT id, question_id, text, is_correct
		FROM options
		WHERE question_id = $1
		ORDER BY id
	`, questionID)
}

func (r *OptionRepository) ListByQuiz(ctx context.Context, quizID int64) ([]*entities.Option, error) {
	return r.list(ctx, `
		SELECT o.id, o.question_id, o.text, o.is_correct
		FROM options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.quiz_id = $1
		ORDER BY o.question_id, o.id
	`, quizID)
}

func (r *OptionRepository) DeleteByQuestion(ctx context.Context, questionID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM options WHERE question_id = $1`, questionID)
	if err != nil {
		return 0, fmt.Errorf("delete question options: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *OptionRepository) DeleteByQuiz(ctx context.Context, quizID int64) (int64, error) {
	query := `DELETE FROM options WHERE question_id IN (SELECT id FROM questions WHERE quiz_id = $1)`

	tag, err := r.db.Exec(ctx, query, quizID)
	if err != nil {
		return 0, fmt.Errorf("delete quiz options: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *OptionRepository) list(ctx context.Context, query string, args ...any) ([]*entities.Option, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	defer rows.Close()

	var options []*entities.Option
	for rows.Next() {
		var o entities.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		options = append(options, &o)
	}

	return options, rows.Err()
}
