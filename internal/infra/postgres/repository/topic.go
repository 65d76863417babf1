package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/infra/postgres"
	ports "github.com/mylearnapp/quiz-platform/internal/repository"
)

type TopicRepository struct {
	db postgres.DBTX
}

func NewTopicRepository(db postgres.DBTX) *TopicRepository {
	return &TopicRepository{db: db}
}

func (r *TopicRepository) Create(ctx context.Context, t *entities.Topic) (int64, error) {
	query := `INSERT INTO topics (name, description) VALUES ($1, $2) RETURNING id`

	var id int64
	if err := r.db.QueryRow(ctx, query, t.Name, t.Description).Scan(&id); err != nil {
		if postgres.IsUniqueViolation(err) {
			return 0, ports.ErrTopicNameTaken
		}
		return 0, fmt.Errorf("create topic: %w", err)
	}

	return id, nil
}

func (r *TopicRepository) GetByID(ctx context.Context, id int64) (*entities.Topic, error) {
	var t entities.Topic
	err := r.db.QueryRow(ctx, `SELECT id, name, description FROM topics WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("topic", id)
		}
		return nil, fmt.Errorf("get topic: %w", err)
	}

	return &t, nil
}

func (r *TopicRepository) GetByName(ctx context.Context, name string) (*entities.Topic, error) {
	var t entities.Topic
	err := r.db.QueryRow(ctx, `SELECT id, name, description FROM topics WHERE name = $1`, name).
		Scan(&t.ID, &t.Name, &t.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("topic", name)
		}
		return nil, fmt.Errorf("get topic by name: %w", err)
	}

	return &t, nil
}

func (r *TopicRepository) List(ctx context.Context) ([]*entities.Topic, error) {
	return r.list(ctx, `SELECT id, name, description FROM topics ORDER BY name`)
}

// Search returns topics whose name contains term, ignoring case.
func (r *TopicRepository) Search(ctx context.Context, term string) ([]*entities.Topic, error) {
	query := `
		SELECT id, name, description
		FROM topics
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
	`
	return r.list(ctx, query, term)
}

func (r *TopicRepository) Update(ctx context.Context, t *entities.Topic) error {
	tag, err := r.db.Exec(ctx, `UPDATE topics SET name = $1, description = $2 WHERE id = $3`, t.Name, t.Description, t.ID)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return ports.ErrTopicNameTaken
		}
		return fmt.Errorf("update topic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("topic", t.ID)
	}

	return nil
}

func (r *TopicRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM topics WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete topic: %w", err)
	}

	return nil
}

func (r *TopicRepository) list(ctx context.Context, query string, args ...any) ([]*entities.Topic, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []*entities.Topic
	for rows.Next() {
		var t entities.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, &t)
	}

	return topics, rows.Err()
}
