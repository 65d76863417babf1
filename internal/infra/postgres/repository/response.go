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

type ResponseRepository struct {
	db postgres.DBTX
}

func NewResponseRepository(db postgres.DBTX) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// CreateBatch inserts the responses and sets their IDs.
func (r *ResponseRepository) CreateBatch(ctx context.Context, responses []*entities.Response) error {
	if len(responses) == 0 {
		return nil
	}

	query := `
		INSERT INTO responses (attempt_id, question_id, option_id, is_correct)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	batch := &pgx.Batch{}
	for _, resp := range responses {
		batch.Queue(query, resp.AttemptID, resp.QuestionID, resp.OptionID, resp.IsCorrect)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for _, resp := range responses {
		if err := results.QueryRow().Scan(&resp.ID); err != nil {
			return fmt.Errorf("create response: %w", err)
		}
	}

	return nil
}

func (r *ResponseRepository) ListByAttempt(ctx context.Context, attemptID int64) ([]*entities.Response, error) {
	query := `
		SELECT id, attempt_id, question_id, option_id, is_correct
		FROM responses
		WHERE attempt_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var responses []*entities.Response
	for rows.Next() {
		var resp entities.Response
		if err := rows.Scan(&resp.ID, &resp.AttemptID, &resp.QuestionID, &resp.OptionID, &resp.IsCorrect); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		responses = append(responses, &resp)
	}

	return responses, rows.Err()
}

func (r *ResponseRepository) GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID int64) (*entities.Response, error) {
	query := `
		SELECT id, attempt_id, question_id, option_id, is_correct
		FROM responses
		WHERE attempt_id = $1 AND question_id = $2
		ORDER BY id
		LIMIT 1
	`

	var resp entities.Response
	err := r.db.QueryRow(ctx, query, attemptID, questionID).
		Scan(&resp.ID, &resp.AttemptID, &resp.QuestionID, &resp.OptionID, &resp.IsCorrect)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Errorf(apperr.KindNotFound, "response to question %d in attempt %d not found", questionID, attemptID)
		}
		return nil, fmt.Errorf("get response: %w", err)
	}

	return &resp, nil
}

func (r *ResponseRepository) DeleteByAttempt(ctx context.Context, attemptID int64) (int64, error) {
	return r.exec(ctx, "delete attempt responses", `DELETE FROM responses WHERE attempt_id = $1`, attemptID)
}

func (r *ResponseRepository) DeleteByQuizAttempts(ctx context.Context, quizID int64) (int64, error) {
	return r.exec(ctx, "delete quiz attempt responses", `
		DELETE FROM responses
		WHERE attempt_id IN (SELECT id FROM quiz_attempts WHERE quiz_id = $1)
	`, quizID)
}

func (r *ResponseRepository) DeleteByQuestion(ctx context.Context, questionID int64) (int64, error) {
	return r.exec(ctx, "delete question responses", `
		DELETE FROM responses
		WHERE question_id = $1
		   OR option_id IN (SELECT id FROM options WHERE question_id = $1)
	`, questionID)
}

func (r *ResponseRepository) DeleteByQuestionOptions(ctx context.Context, questionID int64) (int64, error) {
	return r.exec(ctx, "delete option responses", `
		DELETE FROM responses
		WHERE option_id IN (SELECT id FROM options WHERE question_id = $1)
	`, questionID)
}

func (r *ResponseRepository) DeleteByQuizQuestions(ctx context.Context, quizID int64) (int64, error) {
	return r.exec(ctx, "delete quiz question responses", `
		DELETE FROM responses
		WHERE question_id IN (SELECT id FROM questions WHERE quiz_id = $1)
		   OR option_id IN (
				SELECT o.id FROM options o
				JOIN questions q ON q.id = o.question_id
				WHERE q.quiz_id = $1
		   )
	`, quizID)
}

func (r *ResponseRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	return r.exec(ctx, "delete user responses", `
		DELETE FROM responses
		WHERE attempt_id IN (SELECT id FROM quiz_attempts WHERE user_id = $1)
	`, userID)
}

func (r *ResponseRepository) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}
