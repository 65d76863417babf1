package service

import (
	"context"
	"strings"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
)

type TopicService struct {
	store repository.Store
	tr    repository.Transactor
}

func NewTopicService(store repository.Store, tr repository.Transactor) *TopicService {
	return &TopicService{store: store, tr: tr}
}

// Create adds a topic. Topic names are unique.
func (s *TopicService) Create(ctx context.Context, name, description string) (*entities.Topic, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("topic name is required")
	}

	t := &entities.Topic{Name: name, Description: description}
	id, err := s.store.Topics().Create(ctx, t)
	if err != nil {
		return nil, err
	}
	t.ID = id

	return t, nil
}

func (s *TopicService) Get(ctx context.Context, id int64) (*entities.Topic, error) {
	return s.store.Topics().GetByID(ctx, id)
}

func (s *TopicService) List(ctx context.Context) ([]*entities.Topic, error) {
	return s.store.Topics().List(ctx)
}

func (s *TopicService) Search(ctx context.Context, term string) ([]*entities.Topic, error) {
	return s.store.Topics().Search(ctx, strings.TrimSpace(term))
}

func (s *TopicService) Update(ctx context.Context, id int64, name, description string) (*entities.Topic, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("topic name is required")
	}

	t := &entities.Topic{ID: id, Name: name, Description: description}
	if err := s.store.Topics().Update(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// Delete removes the topic. Quizzes of the topic are kept without a topic.
func (s *TopicService) Delete(ctx context.Context, id int64) error {
	return s.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		if _, err := st.Topics().GetByID(ctx, id); err != nil {
			return err
		}
		if err := st.Quizzes().ClearTopic(ctx, id); err != nil {
			return err
		}
		return st.Topics().Delete(ctx, id)
	})
}
