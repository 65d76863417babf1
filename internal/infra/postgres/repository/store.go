package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/mylearnapp/quiz-platform/internal/infra/postgres"
	ports "github.com/mylearnapp/quiz-platform/internal/repository"
)

// Store bundles the PostgreSQL repositories bound to one DBTX.
type Store struct {
	users      *UserRepository
	topics     *TopicRepository
	quizzes    *QuizRepository
	questions  *QuestionRepository
	options    *OptionRepository
	attempts   *AttemptRepository
	responses  *ResponseRepository
	statistics *StatisticsRepository
}

// NewStore creates a Store on top of a pool or a transaction.
func NewStore(db postgres.DBTX) *Store {
	return &Store{
		users:      NewUserRepository(db),
		topics:     NewTopicRepository(db),
		quizzes:    NewQuizRepository(db),
		questions:  NewQuestionRepository(db),
		options:    NewOptionRepository(db),
		attempts:   NewAttemptRepository(db),
		responses:  NewResponseRepository(db),
		statistics: NewStatisticsRepository(db),
	}
}

func (s *Store) Users() ports.UserRepository { return s.users }
func (s *Store) Topics() ports.TopicRepository { return s.topics }
func (s *Store) Quizzes() ports.QuizRepository { return s.quizzes }
func (s *Store) Questions() ports.QuestionRepository { return s.questions }
func (s *Store) Options() ports.OptionRepository { return s.options }
func (s *Store) Attempts() ports.AttemptRepository { return s.attempts }
func (s *Store) Responses() ports.ResponseRepository { return s.responses }
func (s *Store) Statistics() ports.StatisticsRepository { return s.statistics }

// UnitOfWork adapts postgres.Transactor to the repository.Transactor port.
type UnitOfWork struct {
	tr *postgres.Transactor
}

func NewUnitOfWork(tr *postgres.Transactor) *UnitOfWork {
	return &UnitOfWork{tr: tr}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, s ports.Store) error) error {
	return u.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, NewStore(tx))
	})
}
