package http

import (
	"context"

	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
	"github.com/mylearnapp/quiz-platform/internal/service"
)

type AttemptService interface {
	StartByClerkID(ctx context.Context, clerkID string, quizID int64) (*entities.QuizAttempt, error)
	Submit(ctx context.Context, attemptID int64, answers []entities.Answer) (*entities.QuizAttempt, error)
	AutoExpire(ctx context.Context, attemptID int64) (*entities.QuizAttempt, error)
	HasTimeLimitExceeded(ctx context.Context, attemptID int64) (bool, error)
	GetAttempt(ctx context.Context, attemptID int64) (*entities.QuizAttempt, error)
	ListUserAttempts(ctx context.Context, clerkID string) ([]*entities.QuizAttempt, error)
	ListRecentUserAttempts(ctx context.Context, clerkID string, limit int) ([]*entities.QuizAttempt, error)
	ListQuizAttempts(ctx context.Context, quizID int64) ([]*entities.QuizAttempt, error)
	ListUserQuizAttempts(ctx context.Context, userID, quizID int64) ([]*entities.QuizAttempt, error)
	ListResponses(ctx context.Context, attemptID int64) ([]*entities.Response, error)
	GetResponseForQuestion(ctx context.Context, attemptID, questionID int64) (*entities.Response, error)
	DeleteAttempt(ctx context.Context, attemptID int64) error
}

type QuizService interface {
	CreateQuiz(ctx context.Context, professorID int64, in service.QuizInput) (*service.QuizDetails, error)
	UpdateQuiz(ctx context.Context, quizID, professorID int64, in service.QuizInput) (*entities.Quiz, error)
	AddQuestion(ctx context.Context, quizID, professorID int64, in service.QuestionInput) (*entities.Question, error)
	GetQuiz(ctx context.Context, quizID int64) (*service.QuizDetails, error)
	GetProfessorQuiz(ctx context.Context, quizID, professorID int64) (*service.QuizDetails, error)
	ListQuizzes(ctx context.Context, f repository.QuizFilter) ([]*entities.Quiz, error)
	ListProfessorQuizzes(ctx context.Context, professorID int64) ([]*entities.Quiz, error)
	ListQuestions(ctx context.Context) ([]*entities.Question, error)
	GetQuestion(ctx context.Context, questionID int64) (*entities.Question, error)
	ListQuizQuestions(ctx context.Context, quizID int64) ([]*entities.Question, error)
}

type CascadeDeleter interface {
	DeleteQuiz(ctx context.Context, quizID int64) (*service.CascadeReport, error)
	DeleteProfessorQuiz(ctx context.Context, quizID, professorID int64) (*service.CascadeReport, error)
	DeleteQuestion(ctx context.Context, questionID, professorID int64) error
	UpdateQuestion(ctx context.Context, questionID, professorID int64, text string, options []*entities.Option) (*entities.Question, error)
}

type UserService interface {
	Provision(ctx context.Context, p service.Profile) (*entities.User, bool, error)
	Get(ctx context.Context, id int64) (*entities.User, error)
	GetByClerkID(ctx context.Context, clerkID string) (*entities.User, error)
	UpdateRole(ctx context.Context, clerkID, role string) (*entities.User, error)
	Delete(ctx context.Context, clerkID string) error
	CheckRole(ctx context.Context, clerkID string) (entities.Role, error)
}

type TopicService interface {
	Create(ctx context.Context, name, description string) (*entities.Topic, error)
	Get(ctx context.Context, id int64) (*entities.Topic, error)
	List(ctx context.Context) ([]*entities.Topic, error)
	Search(ctx context.Context, term string) ([]*entities.Topic, error)
	Update(ctx context.Context, id int64, name, description string) (*entities.Topic, error)
	Delete(ctx context.Context, id int64) error
}

type StatisticsService interface {
	Quiz(ctx context.Context, quizID int64) (*service.QuizStatistics, error)
	Question(ctx context.Context, questionID int64) (*service.QuestionStatistics, error)
	System(ctx context.Context) (*repository.SystemStats, error)
}

type GenerationService interface {
	GenerateDraft(ctx context.Context, clerkID string, req service.GenerationRequest) (*service.QuizInput, error)
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker func(ctx context.Context) error
