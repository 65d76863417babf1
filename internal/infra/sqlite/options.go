package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
)

type optionRepo struct {
	db DBTX
}

func (r *optionRepo) CreateBatch(ctx context.Context, options []*entities.Option) error {
	for _, o := range options {
		res, err := r.db.ExecContext(ctx, `INSERT INTO options (question_id, text, is_correct) VALUES (?, ?, ?)`,
			o.QuestionID, o.Text, o.IsCorrect)
		if err != nil {
			return fmt.Errorf("create option: %w", err)
		}
		if o.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("create option: %w", err)
		}
	}
	return nil
}

func (r *optionRepo) GetByID(ctx context.Context, id int64) (*entities.Option, error) {
	var o entities.Option
	err := r.db.QueryRowContext(ctx, `SELECT id, question_id, text, is_correct FROM options WHERE id = ?`, id).
		Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("option", id)
		}
		return nil, fmt.Errorf("get option: %w", err)
	}
	return &o, nil
}

func (r *optionRepo) List(ctx context.Context) ([]*entities.Option, error) {
	return r.list(ctx, `SELECT id, question_id, text, is_correct FROM options ORDER BY question_id, id`)
}

func (r *optionRepo) ListByQuestion(ctx context.Context, questionID int64) ([]*entities.Option, error) {
	return r.list(ctx, `
		SELECT id, question_id, text, is_correct
		FROM options
		WHERE question_id = ?
		ORDER BY id`, questionID)
}

func (r *optionRepo) ListByQuiz(ctx context.Context, quizID int64) ([]*entities.Option, error) {
	return r.list(ctx, `
		SELECT o.id, o.question_id, o.text, o.is_correct
		FROM options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.quiz_id = ?
		ORDER BY o.question_id, o.id`, quizID)
}

func (r *optionRepo) DeleteByQuestion(ctx context.Context, questionID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM options WHERE question_id = ?`, questionID)
	if err != nil {
		return 0, fmt.Errorf("delete question options: %w", err)
	}
	return rowsAffected(res), nil
}

func (r *optionRepo) DeleteByQuiz(ctx context.Context, quizID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM options WHERE question_id IN (SELECT id FROM questions WHERE quiz_id = ?)`, quizID)
	if err != nil {
		return 0, fmt.Errorf("delete quiz options: %w", err)
	}
	return rowsAffected(res), nil
}

func (r *optionRepo) list(ctx context.Context, query string, args ...any) ([]*entities.Option, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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
