package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
)

var errDiskFull = errors.New("disk full")

// brokenOptions fails both option deletes after the earlier cascade steps ran.
type brokenOptions struct {
	repository.OptionRepository
}

func (brokenOptions) DeleteByQuiz(context.Context, int64) (int64, error) { return 0, errDiskFull }
func (brokenOptions) DeleteByQuestion(context.Context, int64) (int64, error) { return 0, errDiskFull }

type brokenOptionsStore struct {
	repository.Store
}

func (s brokenOptionsStore) Options() repository.OptionRepository {
	return brokenOptions{s.Store.Options()}
}

// brokenOptionsTx hands fn a store whose option deletes fail inside a real transaction.
type brokenOptionsTx struct {
	tr repository.Transactor
}

func (b brokenOptionsTx) WithinTx(ctx context.Context, fn func(ctx context.Context, s repository.Store) error) error {
	return b.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		return fn(ctx, brokenOptionsStore{st})
	})
}

// takeQuiz starts and grades one attempt per answer set.
func (e *env) takeQuiz(t *testing.T, userID, quizID int64, answers ...[]entities.Answer) []*entities.QuizAttempt {
	t.Helper()

	svc := e.attempts()
	var out []*entities.QuizAttempt
	for _, ans := range answers {
		a, err := svc.Start(context.Background(), userID, quizID)
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if a, err = svc.Submit(context.Background(), a.ID, ans); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		out = append(out, a)
	}
	return out
}

func TestDeleteQuizRemovesEveryDependent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)
	keep := e.geographyQuiz2(t, g.professor)
	student := e.user(t, "student_1", entities.RoleStudent)

	e.takeQuiz(t, student.ID, g.details.Quiz.ID,
		[]entities.Answer{{QuestionID: g.question.ID, OptionID: g.paris.ID}},
		[]entities.Answer{{QuestionID: g.question.ID, OptionID: g.lyon.ID}},
	)
	kept := e.takeQuiz(t, student.ID, keep.details.Quiz.ID,
		[]entities.Answer{{QuestionID: keep.question.ID, OptionID: keep.paris.ID}},
	)

	report, err := e.cascade().DeleteQuiz(ctx, g.details.Quiz.ID)
	if err != nil {
		t.Fatalf("DeleteQuiz() error = %v", err)
	}
	want := CascadeReport{Responses: 2, Attempts: 2, Options: 2, Questions: 1}
	if *report != want {
		t.Fatalf("DeleteQuiz() report = %+v, want %+v", *report, want)
	}

	if _, err := e.store.Quizzes().GetByID(ctx, g.details.Quiz.ID); !apperrIsNotFound(err) {
		t.Fatalf("quiz still present: %v", err)
	}
	if n, _ := e.store.Questions().CountByQuiz(ctx, g.details.Quiz.ID); n != 0 {
		t.Fatalf("questions left = %d, want 0", n)
	}
	if opts, _ := e.store.Options().ListByQuiz(ctx, g.details.Quiz.ID); len(opts) != 0 {
		t.Fatalf("options left = %d, want 0", len(opts))
	}
	if attempts, _ := e.store.Attempts().ListByQuiz(ctx, g.details.Quiz.ID); len(attempts) != 0 {
		t.Fatalf("attempts left = %d, want 0", len(attempts))
	}

	// The other quiz is untouched.
	responses, err := e.store.Responses().ListByAttempt(ctx, kept[0].ID)
	if err != nil || len(responses) != 1 {
		t.Fatalf("unrelated responses = (%d, %v), want 1", len(responses), err)
	}

	_, err = e.cascade().DeleteQuiz(ctx, g.details.Quiz.ID)
	assertNotFound(t, err)
}

func TestDeleteQuizRollsBackOnFailedStep(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)
	student := e.user(t, "student_1", entities.RoleStudent)
	quizID := g.details.Quiz.ID

	attempts := e.takeQuiz(t, student.ID, quizID,
		[]entities.Answer{{QuestionID: g.question.ID, OptionID: g.paris.ID}},
		[]entities.Answer{{QuestionID: g.question.ID, OptionID: g.lyon.ID}},
	)

	deleter := NewCascadeDeleter(brokenOptionsTx{e.tr}, zap.NewNop())
	report, err := deleter.DeleteQuiz(ctx, quizID)
	assertKind(t, err, apperr.KindStorage)
	if !errors.Is(err, errDiskFull) || report != nil {
		t.Fatalf("DeleteQuiz() = (%+v, %v), want nil report and the store error", report, err)
	}

	if _, err := e.store.Quizzes().GetByID(ctx, quizID); err != nil {
		t.Fatalf("quiz gone after rollback: %v", err)
	}
	if got, _ := e.store.Attempts().ListByQuiz(ctx, quizID); len(got) != 2 {
		t.Fatalf("attempts after rollback = %d, want 2", len(got))
	}
	for _, a := range attempts {
		responses, err := e.store.Responses().ListByAttempt(ctx, a.ID)
		if err != nil || len(responses) != 1 {
			t.Fatalf("responses of attempt %d after rollback = (%d, %v), want 1", a.ID, len(responses), err)
		}
	}
	if n, _ := e.store.Questions().CountByQuiz(ctx, quizID); n != 1 {
		t.Fatalf("questions after rollback = %d, want 1", n)
	}
	if opts, _ := e.store.Options().ListByQuiz(ctx, quizID); len(opts) != 2 {
		t.Fatalf("options after rollback = %d, want 2", len(opts))
	}

	// The same quiz still deletes cleanly once the store recovers.
	if _, err := e.cascade().DeleteQuiz(ctx, quizID); err != nil {
		t.Fatalf("DeleteQuiz() after rollback error = %v", err)
	}
}

func TestUpdateQuestionRollsBackOnFailedStep(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)
	student := e.user(t, "student_1", entities.RoleStudent)
	attempts := e.takeQuiz(t, student.ID, g.details.Quiz.ID,
		[]entities.Answer{{QuestionID: g.question.ID, OptionID: g.paris.ID}},
	)

	deleter := NewCascadeDeleter(brokenOptionsTx{e.tr}, zap.NewNop())
	_, err := deleter.UpdateQuestion(ctx, g.question.ID, g.professor.ID, "Capital city of France?", []*entities.Option{
		{Text: "Paris", IsCorrect: true},
		{Text: "Nice"},
	})
	assertKind(t, err, apperr.KindStorage)

	responses, err := e.store.Responses().ListByAttempt(ctx, attempts[0].ID)
	if err != nil || len(responses) != 1 || responses[0].OptionID == nil || *responses[0].OptionID != g.paris.ID {
		t.Fatalf("responses after rollback = (%+v, %v), want the original answer", responses, err)
	}
	q, err := e.store.Questions().GetByID(ctx, g.question.ID)
	if err != nil || q.Text != g.question.Text {
		t.Fatalf("question after rollback = (%+v, %v), want original text", q, err)
	}
	opts, err := e.store.Options().ListByQuestion(ctx, g.question.ID)
	if err != nil || len(opts) != 2 || opts[0].ID != g.paris.ID || opts[1].ID != g.lyon.ID {
		t.Fatalf("options after rollback = (%+v, %v), want Paris and Lyon", opts, err)
	}
}

func TestDeleteQuestionRollsBackOnFailedStep(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)
	student := e.user(t, "student_1", entities.RoleStudent)
	attempts := e.takeQuiz(t, student.ID, g.details.Quiz.ID,
		[]entities.Answer{{QuestionID: g.question.ID, OptionID: g.lyon.ID}},
	)

	deleter := NewCascadeDeleter(brokenOptionsTx{e.tr}, zap.NewNop())
	assertKind(t, deleter.DeleteQuestion(ctx, g.question.ID, g.professor.ID), apperr.KindStorage)

	if _, err := e.store.Questions().GetByID(ctx, g.question.ID); err != nil {
		t.Fatalf("question gone after rollback: %v", err)
	}
	responses, err := e.store.Responses().ListByAttempt(ctx, attempts[0].ID)
	if err != nil || len(responses) != 1 {
		t.Fatalf("responses after rollback = (%d, %v), want 1", len(responses), err)
	}
}

func TestDeleteProfessorQuizChecksOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)
	intruder := e.user(t, "prof_other", entities.RoleProfessor)

	_, err := e.cascade().DeleteProfessorQuiz(ctx, g.details.Quiz.ID, intruder.ID)
	assertKind(t, err, apperr.KindForbidden)

	if _, err := e.store.Quizzes().GetByID(ctx, g.details.Quiz.ID); err != nil {
		t.Fatalf("quiz removed after forbidden delete: %v", err)
	}

	_, err = e.cascade().DeleteProfessorQuiz(ctx, g.details.Quiz.ID, 4242)
	assertNotFound(t, err)

	if _, err := e.cascade().DeleteProfessorQuiz(ctx, g.details.Quiz.ID, g.professor.ID); err != nil {
		t.Fatalf("DeleteProfessorQuiz() error = %v", err)
	}
}

func TestDeleteQuestion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)
	student := e.user(t, "student_1", entities.RoleStudent)
	attempts := e.takeQuiz(t, student.ID, g.details.Quiz.ID,
		[]entities.Answer{{QuestionID: g.question.ID, OptionID: g.paris.ID}},
	)

	intruder := e.user(t, "prof_other", entities.RoleProfessor)
	assertKind(t, e.cascade().DeleteQuestion(ctx, g.question.ID, intruder.ID), apperr.KindForbidden)

	if err := e.cascade().DeleteQuestion(ctx, g.question.ID, g.professor.ID); err != nil {
		t.Fatalf("DeleteQuestion() error = %v", err)
	}
	assertNotFound(t, e.cascade().DeleteQuestion(ctx, g.question.ID, g.professor.ID))

	responses, err := e.store.Responses().ListByAttempt(ctx, attempts[0].ID)
	if err != nil || len(responses) != 0 {
		t.Fatalf("responses left = (%d, %v), want 0", len(responses), err)
	}

	// The attempt itself survives with its recorded score.
	a, err := e.store.Attempts().GetByID(ctx, attempts[0].ID)
	if err != nil || a.Score != 1 {
		t.Fatalf("attempt after question delete = (%+v, %v), want score 1", a, err)
	}
}

func TestUpdateQuestionReplacesOptions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)
	student := e.user(t, "student_1", entities.RoleStudent)
	attempts := e.takeQuiz(t, student.ID, g.details.Quiz.ID,
		[]entities.Answer{{QuestionID: g.question.ID, OptionID: g.paris.ID}},
	)

	q, err := e.cascade().UpdateQuestion(ctx, g.question.ID, g.professor.ID, "Capital city of France?", []*entities.Option{
		{Text: "Paris", IsCorrect: true},
		{Text: "Marseille"},
		{Text: "Nice"},
	})
	if err != nil {
		t.Fatalf("UpdateQuestion() error = %v", err)
	}
	if q.Text != "Capital city of France?" || len(q.Options) != 3 {
		t.Fatalf("UpdateQuestion() = %q with %d options, want new text and 3 options", q.Text, len(q.Options))
	}
	for _, o := range q.Options {
		if o.ID == g.paris.ID || o.ID == g.lyon.ID {
			t.Fatalf("old option %d survived replacement", o.ID)
		}
	}

	responses, err := e.store.Responses().ListByAttempt(ctx, attempts[0].ID)
	if err != nil || len(responses) != 0 {
		t.Fatalf("responses referencing replaced options = (%d, %v), want 0", len(responses), err)
	}
}

func TestUpdateQuestionKeepsOptionsWhenNoneGiven(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)

	q, err := e.cascade().UpdateQuestion(ctx, g.question.ID, g.professor.ID, "", nil)
	if err != nil {
		t.Fatalf("UpdateQuestion() error = %v", err)
	}
	if q.Text != g.question.Text || len(q.Options) != 2 || q.Options[0].ID != g.paris.ID {
		t.Fatalf("UpdateQuestion() = %+v, want unchanged question", q)
	}

	_, err = e.cascade().UpdateQuestion(ctx, g.question.ID, g.professor.ID, "", []*entities.Option{{Text: " "}})
	assertKind(t, err, apperr.KindValidation)

	intruder := e.user(t, "prof_other", entities.RoleProfessor)
	_, err = e.cascade().UpdateQuestion(ctx, g.question.ID, intruder.ID, "Hijacked", nil)
	assertKind(t, err, apperr.KindForbidden)
}

func apperrIsNotFound(err error) bool {
	return apperr.KindOf(err) == apperr.KindNotFound
}
