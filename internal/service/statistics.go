package service

import (
	"context"
	"time"

	"github.com/mylearnapp/quiz-platform/internal/repository"
)

const (
	mostMissedLimit = 5
	recentWindow    = 7 * 24 * time.Hour
)

// QuizStatistics is the read model for a quiz.
type QuizStatistics struct {
	repository.QuizStats
	MostMissed []repository.QuestionMiss
}

// QuestionStatistics is the read model for a question.
type QuestionStatistics struct {
	repository.QuestionStats
	Options []repository.OptionCount
}

// StatisticsService computes read-only reports over quizzes and attempts.
type StatisticsService struct {
	store repository.Store
	now   func() time.Time
}

func NewStatisticsService(store repository.Store, opts ...Option) *StatisticsService {
	o := newOptions(opts)
	return &StatisticsService{store: store, now: o.now}
}

func (s *StatisticsService) Quiz(ctx context.Context, quizID int64) (*QuizStatistics, error) {
	if _, err := s.store.Quizzes().GetByID(ctx, quizID); err != nil {
		return nil, err
	}

	stats, err := s.store.Statistics().QuizStats(ctx, quizID)
	if err != nil {
		return nil, err
	}
	missed, err := s.store.Statistics().MostMissedQuestions(ctx, quizID, mostMissedLimit)
	if err != nil {
		return nil, err
	}

	return &QuizStatistics{QuizStats: *stats, MostMissed: missed}, nil
}

func (s *StatisticsService) Question(ctx context.Context, questionID int64) (*QuestionStatistics, error) {
	if _, err := s.store.Questions().GetByID(ctx, questionID); err != nil {
		return nil, err
	}

	stats, err := s.store.Statistics().QuestionStats(ctx, questionID)
	if err != nil {
		return nil, err
	}
	options, err := s.store.Statistics().OptionDistribution(ctx, questionID)
	if err != nil {
		return nil, err
	}

	return &QuestionStatistics{QuestionStats: *stats, Options: options}, nil
}

// System summarizes platform activity, counting attempts of the last seven days as recent.
func (s *StatisticsService) System(ctx context.Context) (*repository.SystemStats, error) {
	return s.store.Statistics().SystemStats(ctx, s.now().Add(-recentWindow))
}
