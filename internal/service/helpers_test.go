package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/infra/sqlite"
)

// testClock is a manually advanced time source.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type env struct {
	store *sqlite.Store
	tr    *sqlite.Transactor
	clock *testClock
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := sqlite.OpenMemory(context.Background())
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return &env{
		store: sqlite.NewStore(db),
		tr:    sqlite.NewTransactor(db, 5*time.Second),
		clock: newTestClock(),
	}
}

func (e *env) attempts() *AttemptService {
	return NewAttemptService(e.store, e.tr, zap.NewNop(), WithClock(e.clock.Now))
}

func (e *env) quizzes() *QuizService {
	return NewQuizService(e.store, e.tr, zap.NewNop())
}

func (e *env) cascade() *CascadeDeleter {
	return NewCascadeDeleter(e.tr, zap.NewNop())
}

func (e *env) users() *UserService {
	return NewUserService(e.store, e.tr, zap.NewNop())
}

func (e *env) user(t *testing.T, clerkID string, role entities.Role) *entities.User {
	t.Helper()

	u := entities.NewUser(clerkID, clerkID+"@example.com", "Test", "User")
	u.Role = role
	id, err := e.store.Users().Create(context.Background(), u)
	if err != nil {
		t.Fatalf("create user %s: %v", clerkID, err)
	}
	u.ID = id
	return u
}

// geographyQuiz is a one-question quiz: "Capital of France?" with Paris correct.
type geographyQuiz struct {
	professor *entities.User
	details   *QuizDetails
	question  *entities.Question
	paris     *entities.Option
	lyon      *entities.Option
}

func (e *env) geographyQuiz(t *testing.T, timeLimit int) geographyQuiz {
	t.Helper()

	prof := e.user(t, "prof_geo", entities.RoleProfessor)
	details, err := e.quizzes().CreateQuiz(context.Background(), prof.ID, QuizInput{
		Title:            "Geography",
		TimeLimitSeconds: timeLimit,
		Questions: []QuestionInput{{
			Text: "Capital of France?",
			Options: []OptionInput{
				{Text: "Paris", IsCorrect: true},
				{Text: "Lyon"},
			},
		}},
	})
	if err != nil {
		t.Fatalf("CreateQuiz() error = %v", err)
	}

	q := details.Questions[0]
	return geographyQuiz{
		professor: prof,
		details:   details,
		question:  q,
		paris:     q.Options[0],
		lyon:      q.Options[1],
	}
}

func assertKind(t *testing.T, err error, want apperr.Kind) {
	t.Helper()

	if err == nil {
		t.Fatalf("error = nil, want kind %v", want)
	}
	if got := apperr.KindOf(err); got != want {
		t.Fatalf("error kind = %v (%v), want %v", got, err, want)
	}
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()

	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}
