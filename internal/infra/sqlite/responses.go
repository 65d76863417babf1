package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
)

type responseRepo struct {
	db DBTX
}

const responseColumns = `id, attempt_id, question_id, option_id, is_correct`

func (r *responseRepo) CreateBatch(ctx context.Context, responses []*entities.Response) error {
	for _, resp := range responses {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO responses (attempt_id, question_id, option_id, is_correct)
			VALUES (?, ?, ?, ?)`,
			resp.AttemptID, resp.QuestionID, nullID(resp.OptionID), resp.IsCorrect)
		if err != nil {
			return fmt.Errorf("create response: %w", err)
		}
		if resp.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("create response: %w", err)
		}
	}
	return nil
}

func (r *responseRepo) ListByAttempt(ctx context.Context, attemptID int64) ([]*entities.Response, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+responseColumns+` FROM responses WHERE attempt_id = ? ORDER BY id`, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var responses []*entities.Response
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

func (r *responseRepo) GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID int64) (*entities.Response, error) {
	resp, err := scanResponse(r.db.QueryRowContext(ctx, `
		SELECT `+responseColumns+`
		FROM responses
		WHERE attempt_id = ? AND question_id = ?
		ORDER BY id
		LIMIT 1`, attemptID, questionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Errorf(apperr.KindNotFound, "response to question %d in attempt %d not found", questionID, attemptID)
		}
		return nil, fmt.Errorf("get response: %w", err)
	}
	return resp, nil
}

func (r *responseRepo) DeleteByAttempt(ctx context.Context, attemptID int64) (int64, error) {
	return r.exec(ctx, "delete attempt responses", `DELETE FROM responses WHERE attempt_id = ?`, attemptID)
}

func (r *responseRepo) DeleteByQuizAttempts(ctx context.Context, quizID int64) (int64, error) {
	return r.exec(ctx, "delete quiz attempt responses", `
		DELETE FROM responses
		WHERE attempt_id IN (SELECT id FROM quiz_attempts WHERE quiz_id = ?)`, quizID)
}

func (r *responseRepo) DeleteByQuestion(ctx context.Context, questionID int64) (int64, error) {
	return r.exec(ctx, "delete question responses", `
		DELETE FROM responses
		WHERE question_id = ?
		   OR option_id IN (SELECT id FROM options WHERE question_id = ?)`, questionID, questionID)
}

func (r *responseRepo) DeleteByQuestionOptions(ctx context.Context, questionID int64) (int64, error) {
	return r.exec(ctx, "delete option responses", `
		DELETE FROM responses
		WHERE option_id IN (SELECT id FROM options WHERE question_id = ?)`, questionID)
}

func (r *responseRepo) DeleteByQuizQuestions(ctx context.Context, quizID int64) (int64, error) {
	return r.exec(ctx, "delete quiz question responses", `
		DELETE FROM responses
		WHERE question_id IN (SELECT id FROM questions WHERE quiz_id = ?)
		   OR option_id IN (
				SELECT o.id FROM options o
				JOIN questions q ON q.id = o.question_id
				WHERE q.quiz_id = ?
		   )`, quizID, quizID)
}

func (r *responseRepo) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	return r.exec(ctx, "delete user responses", `
		DELETE FROM responses
		WHERE attempt_id IN (SELECT id FROM quiz_attempts WHERE user_id = ?)`, userID)
}

func (r *responseRepo) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected(res), nil
}

func scanResponse(row scanner) (*entities.Response, error) {
	var (
		resp     entities.Response
		optionID sql.NullInt64
	)
	if err := row.Scan(&resp.ID, &resp.AttemptID, &resp.QuestionID, &optionID, &resp.IsCorrect); err != nil {
		return nil, err
	}
	resp.OptionID = idPtr(optionID)
	return &resp, nil
}
