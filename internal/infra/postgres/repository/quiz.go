package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/infra/postgres"
	ports "github.com/mylearnapp/quiz-platform/internal/repository"
)

// QuizRepository provides access to quizzes in the database.
type QuizRepository struct {
	db postgres.DBTX
}

// NewQuizRepository creates a new QuizRepository with the provided database handle.
func NewQuizRepository(db postgres.DBTX) *QuizRepository {
	return &QuizRepository{db: db}
}

const quizColumns = `q.id, q.title, q.description, q.difficulty, q.category, q.icon, q.color,
	q.time_limit_seconds, q.topic_id, q.professor_id, q.created_at`

// Create inserts a quiz and returns its ID.
func (r *QuizRepository) Create(ctx context.Context, q *entities.Quiz) (int64, error) {
	query := `
		INSERT INTO quizzes (
			title, description, difficulty, category, icon, color,
			time_limit_seconds, topic_id, professor_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(
		ctx,
		query,
		q.Title,
		q.Description,
		q.Difficulty,
		q.Category,
		q.Icon,
		q.Color,
		q.TimeLimitSeconds,
		q.TopicID,
		q.ProfessorID,
		q.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create quiz: %w", err)
	}

	return id, nil
}

// GetByID returns the quiz with the given ID.
func (r *QuizRepository) GetByID(ctx context.Context, id int64) (*entities.Quiz, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes q WHERE q.id = $1`

	q, err := scanQuiz(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("quiz", id)
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	return q, nil
}

// Update replaces the mutable attributes of a quiz.
func (r *QuizRepository) Update(ctx context.Context, q *entities.Quiz) error {
	query := `
		UPDATE quizzes
		SET title = $1,
		    description = $2,
		    difficulty = $3,
		    category = $4,
		    icon = $5,
		    color = $6,
		    time_limit_seconds = $7,
		    topic_id = $8
		WHERE id = $9
	`

	tag, err := r.db.Exec(
		ctx,
		query,
		q.Title,
		q.Description,
		q.Difficulty,
		q.Category,
		q.Icon,
		q.Color,
		q.TimeLimitSeconds,
		q.TopicID,
		q.ID,
	)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("quiz", q.ID)
	}

	return nil
}

// Delete removes a quiz row. Dependent rows must already be gone.
func (r *QuizRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}

	return nil
}

// List returns quizzes matching the filter, newest first.
func (r *QuizRepository) List(ctx context.Context, f ports.QuizFilter) ([]*entities.Quiz, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.TopicID != 0 {
		add("q.topic_id = $%d", f.TopicID)
	}
	if f.TopicName != "" {
		add("t.name = $%d", f.TopicName)
	}
	if f.Difficulty != "" {
		add("q.difficulty = $%d", f.Difficulty)
	}
	if f.Category != "" {
		add("q.category = $%d", f.Category)
	}
	if f.ProfessorID != 0 {
		add("q.professor_id = $%d", f.ProfessorID)
	}

	query := `SELECT ` + quizColumns + ` FROM quizzes q LEFT JOIN topics t ON t.id = q.topic_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY q.created_at DESC, q.id DESC`

	rows, err := r.db.Query(ctx, query, args...)
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

// ClearTopic detaches every quiz from the topic.
func (r *QuizRepository) ClearTopic(ctx context.Context, topicID int64) error {
	if _, err := r.db.Exec(ctx, `UPDATE quizzes SET topic_id = NULL WHERE topic_id = $1`, topicID); err != nil {
		return fmt.Errorf("clear quiz topic: %w", err)
	}

	return nil
}

// ClearProfessor detaches every quiz from the professor.
func (r *QuizRepository) ClearProfessor(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `UPDATE quizzes SET professor_id = NULL WHERE professor_id = $1`, userID); err != nil {
		return fmt.Errorf("clear quiz professor: %w", err)
	}

	return nil
}

func scanQuiz(row pgx.Row) (*entities.Quiz, error) {
	var q entities.Quiz
	err := row.Scan(
		&q.ID,
		&q.Title,
		&q.Description,
		&q.Difficulty,
		&q.Category,
		&q.Icon,
		&q.Color,
		&q.TimeLimitSeconds,
		&q.TopicID,
		&q.ProfessorID,
		&q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}
