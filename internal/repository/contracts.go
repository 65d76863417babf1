// Package repository declares the data store ports used by the quiz services.
// Implementations live under internal/infra.
package repository

import (
	"context"
	"time"

	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
)

type UserRepository interface {
	Create(ctx context.Context, u *entities.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*entities.User, error)
	GetByClerkID(ctx context.Context, clerkID string) (*entities.User, error)
	ExistsByClerkID(ctx context.Context, clerkID string) (bool, error)
	UpdateRole(ctx context.Context, id int64, role entities.Role) error
	Delete(ctx context.Context, id int64) error
}

type TopicRepository interface {
	Create(ctx context.Context, t *entities.Topic) (int64, error)
	GetByID(ctx context.Context, id int64) (*entities.Topic, error)
	GetByName(ctx context.Context, name string) (*entities.Topic, error)
	List(ctx context.Context) ([]*entities.Topic, error)
	Search(ctx context.Context, term string) ([]*entities.Topic, error)
	Update(ctx context.Context, t *entities.Topic) error
	Delete(ctx context.Context, id int64) error
}

// QuizFilter narrows quiz listings. Zero fields are ignored.
type QuizFilter struct {
	TopicID     int64
	TopicName   string
	Difficulty  string
	Category    string
	ProfessorID int64
}

type QuizRepository interface {
	Create(ctx context.Context, q *entities.Quiz) (int64, error)
	GetByID(ctx context.Context, id int64) (*entities.Quiz, error)
	Update(ctx context.Context, q *entities.Quiz) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f QuizFilter) ([]*entities.Quiz, error)
	ClearTopic(ctx context.Context, topicID int64) error
	ClearProfessor(ctx context.Context, userID int64) error
}

type QuestionRepository interface {
	Create(ctx context.Context, q *entities.Question) (int64, error)
	GetByID(ctx context.Context, id int64) (*entities.Question, error)
	List(ctx context.Context) ([]*entities.Question, error)
	ListByQuiz(ctx context.Context, quizID int64) ([]*entities.Question, error)
	CountByQuiz(ctx context.Context, quizID int64) (int, error)
	UpdateText(ctx context.Context, id int64, text string) error
	Delete(ctx context.Context, id int64) error
	DeleteByQuiz(ctx context.Context, quizID int64) (int64, error)
}

type OptionRepository interface {
	CreateBatch(ctx context.Context, options []*entities.Option) error
	GetByID(ctx context.Context, id int64) (*entities.Option, error)
	List(ctx context.Context) ([]*entities.Option, error)
	ListByQuestion(ctx context.Context, questionID int64) ([]*entities.Option, error)
	ListByQuiz(ctx context.Context, quizID int64) ([]*entities.Option, error)
	DeleteByQuestion(ctx context.Context, questionID int64) (int64, error)
	DeleteByQuiz(ctx context.Context, quizID int64) (int64, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, a *entities.QuizAttempt) (int64, error)
	GetByID(ctx context.Context, id int64) (*entities.QuizAttempt, error)
	// Update persists a state change. It fails with a conflict when the
	// stored version no longer matches a.Version.
	Update(ctx context.Context, a *entities.QuizAttempt) error
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteByQuiz(ctx context.Context, quizID int64) (int64, error)
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]*entities.QuizAttempt, error)
	ListRecentByUser(ctx context.Context, userID int64, limit int) ([]*entities.QuizAttempt, error)
	ListByQuiz(ctx context.Context, quizID int64) ([]*entities.QuizAttempt, error)
	ListByUserAndQuiz(ctx context.Context, userID, quizID int64) ([]*entities.QuizAttempt, error)
	// ListOverdue returns active attempts on timed quizzes whose limit elapsed before now.
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entities.QuizAttempt, error)
}

type ResponseRepository interface {
	CreateBatch(ctx context.Context, responses []*entities.Response) error
	ListByAttempt(ctx context.Context, attemptID int64) ([]*entities.Response, error)
	GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID int64) (*entities.Response, error)
	DeleteByAttempt(ctx context.Context, attemptID int64) (int64, error)
	// DeleteByQuizAttempts removes responses belonging to any attempt on the quiz.
	DeleteByQuizAttempts(ctx context.Context, quizID int64) (int64, error)
	// DeleteByQuestion removes responses that reference the question or one of its options.
	DeleteByQuestion(ctx context.Context, questionID int64) (int64, error)
	// DeleteByQuestionOptions removes responses that reference one of the question's current options.
	DeleteByQuestionOptions(ctx context.Context, questionID int64) (int64, error)
	// DeleteByQuizQuestions removes responses that reference any question or option of the quiz.
	DeleteByQuizQuestions(ctx context.Context, quizID int64) (int64, error)
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}

type StatisticsRepository interface {
	QuizStats(ctx context.Context, quizID int64) (*QuizStats, error)
	MostMissedQuestions(ctx context.Context, quizID int64, limit int) ([]QuestionMiss, error)
	QuestionStats(ctx context.Context, questionID int64) (*QuestionStats, error)
	OptionDistribution(ctx context.Context, questionID int64) ([]OptionCount, error)
	SystemStats(ctx context.Context, since time.Time) (*SystemStats, error)
}

// Store bundles the repositories bound to one connection or transaction.
type Store interface {
	Users() UserRepository
	Topics() TopicRepository
	Quizzes() QuizRepository
	Questions() QuestionRepository
	Options() OptionRepository
	Attempts() AttemptRepository
	Responses() ResponseRepository
	Statistics() StatisticsRepository
}

// Transactor runs fn against a transaction-bound Store. The transaction is
// committed only when fn returns nil.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}
