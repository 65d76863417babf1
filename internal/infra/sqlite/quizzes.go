package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
)

type quizRepo struct {
	db DBTX
}

const quizColumns = `q.id, q.title, q.description, q.difficulty, q.category, q.icon, q.color,
	q.time_limit_seconds, q.topic_id, q.professor_id, q.created_at`

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (r *quizRepo) Create(ctx context.Context, q *entities.Quiz) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO quizzes (
			title, description, difficulty, category, icon, color,
			time_limit_seconds, topic_id, professor_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.Title, q.Description, q.Difficulty, q.Category, q.Icon, q.Color,
		q.TimeLimitSeconds, nullID(q.TopicID), nullID(q.ProfessorID), toMillis(q.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("create quiz: %w", err)
	}
	return res.LastInsertId()
}

func (r *quizRepo) GetByID(ctx context.Context, id int64) (*entities.Quiz, error) {
	q, err := scanQuiz(r.db.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes q WHERE q.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("quiz", id)
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return q, nil
}

func (r *quizRepo) Update(ctx context.Context, q *entities.Quiz) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE quizzes
		SET title = ?, description = ?, difficulty = ?, category = ?,
		    icon = ?, color = ?, time_limit_seconds = ?, topic_id = ?
		WHERE id = ?`,
		q.Title, q.Description, q.Difficulty, q.Category,
		q.Icon, q.Color, q.TimeLimitSeconds, nullID(q.TopicID), q.ID)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if rowsAffected(res) == 0 {
		return apperr.NotFound("quiz", q.ID)
	}
	return nil
}

func (r *quizRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return nil
}

func (r *quizRepo) List(ctx context.Context, f repository.QuizFilter) ([]*entities.Quiz, error) {
	var (
		where []string
		args  []any
	)
	if f.TopicID != 0 {
		where, args = append(where, "q.topic_id = ?"), append(args, f.TopicID)
	}
	if f.TopicName != "" {
		where, args = append(where, "t.name = ?"), append(args, f.TopicName)
	}
	if f.Difficulty != "" {
		where, args = append(where, "q.difficulty = ?"), append(args, f.Difficulty)
	}
	if f.Category != "" {
		where, args = append(where, "q.category = ?"), append(args, f.Category)
	}
	if f.ProfessorID != 0 {
		where, args = append(where, "q.professor_id = ?"), append(args, f.ProfessorID)
	}

	query := `SELECT ` + quizColumns + ` FROM quizzes q LEFT JOIN topics t ON t.id = q.topic_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY q.created_at DESC, q.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []*entities.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

func (r *quizRepo) ClearTopic(ctx context.Context, topicID int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE quizzes SET topic_id = NULL WHERE topic_id = ?`, topicID); err != nil {
		return fmt.Errorf("clear quiz topic: %w", err)
	}
	return nil
}

func (r *quizRepo) ClearProfessor(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE quizzes SET professor_id = NULL WHERE professor_id = ?`, userID); err != nil {
		return fmt.Errorf("clear quiz professor: %w", err)
	}
	return nil
}

func scanQuiz(row scanner) (*entities.Quiz, error) {
	var (
		q               entities.Quiz
		topicID, profID sql.NullInt64
		created         int64
	)
	err := row.Scan(
		&q.ID,
		&q.Title,
		&q.Description,
		&q.Difficulty,
		&q.Category,
		&q.Icon,
		&q.Color,
		&q.TimeLimitSeconds,
		&topicID,
		&profID,
		&created,
	)
	if err != nil {
		return nil, err
	}
	q.TopicID = idPtr(topicID)
	q.ProfessorID = idPtr(profID)
	q.CreatedAt = fromMillis(created)
	return &q, nil
}
