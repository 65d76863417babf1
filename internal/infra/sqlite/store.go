package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mylearnapp/quiz-platform/internal/repository"
)

// Store bundles the SQLite repositories bound to one DBTX.
type Store struct {
	db DBTX
}

// NewStore creates a Store on top of a database or a transaction.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

func (s *Store) Users() repository.UserRepository { return &userRepo{db: s.db} }
func (s *Store) Topics() repository.TopicRepository { return &topicRepo{db: s.db} }
func (s *Store) Quizzes() repository.QuizRepository { return &quizRepo{db: s.db} }
func (s *Store) Questions() repository.QuestionRepository { return &questionRepo{db: s.db} }
func (s *Store) Options() repository.OptionRepository { return &optionRepo{db: s.db} }
func (s *Store) Attempts() repository.AttemptRepository { return &attemptRepo{db: s.db} }
func (s *Store) Responses() repository.ResponseRepository { return &responseRepo{db: s.db} }
func (s *Store) Statistics() repository.StatisticsRepository { return &statsRepo{db: s.db} }

// Transactor runs functions inside SQLite transactions.
type Transactor struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTransactor(db *sql.DB, timeout time.Duration) *Transactor {
	return &Transactor{db: db, timeout: timeout}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, s repository.Store) error) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, NewStore(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
