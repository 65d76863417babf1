package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
)

type topicRepo struct {
	db DBTX
}

func (r *topicRepo) Create(ctx context.Context, t *entities.Topic) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO topics (name, description) VALUES (?, ?)`, t.Name, t.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrTopicNameTaken
		}
		return 0, fmt.Errorf("create topic: %w", err)
	}
	return res.LastInsertId()
}

func (r *topicRepo) GetByID(ctx context.Context, id int64) (*entities.Topic, error) {
	var t entities.Topic
	err := r.db.QueryRowContext(ctx, `SELECT id, name, description FROM topics WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("topic", id)
		}
		return nil, fmt.Errorf("get topic: %w", err)
	}
	return &t, nil
}

func (r *topicRepo) GetByName(ctx context.Context, name string) (*entities.Topic, error) {
	var t entities.Topic
	err := r.db.QueryRowContext(ctx, `SELECT id, name, description FROM topics WHERE name = ?`, name).
		Scan(&t.ID, &t.Name, &t.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("topic", name)
		}
		return nil, fmt.Errorf("get topic by name: %w", err)
	}
	return &t, nil
}

func (r *topicRepo) List(ctx context.Context) ([]*entities.Topic, error) {
	return r.list(ctx, `SELECT id, name, description FROM topics ORDER BY name`)
}

func (r *topicRepo) Search(ctx context.Context, term string) ([]*entities.Topic, error) {
	return r.list(ctx, `SELECT id, name, description FROM topics WHERE name LIKE '%' || ? || '%' ORDER BY name`, term)
}

func (r *topicRepo) Update(ctx context.Context, t *entities.Topic) error {
	res, err := r.db.ExecContext(ctx, `UPDATE topics SET name = ?, description = ? WHERE id = ?`, t.Name, t.Description, t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrTopicNameTaken
		}
		return fmt.Errorf("update topic: %w", err)
	}
	if rowsAffected(res) == 0 {
		return apperr.NotFound("topic", t.ID)
	}
	return nil
}

func (r *topicRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM topics WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete topic: %w", err)
	}
	return nil
}

func (r *topicRepo) list(ctx context.Context, query string, args ...any) ([]*entities.Topic, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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
