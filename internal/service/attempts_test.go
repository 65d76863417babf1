package service

import (
	"context"
	"testing"
	"time"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
)

func TestSubmitWithinTimeLimit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 300)
	student := e.user(t, "student_1", entities.RoleStudent)
	svc := e.attempts()

	a, err := svc.Start(ctx, student.ID, g.details.Quiz.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if a.TotalQuestions != 1 || a.Status != entities.AttemptActive {
		t.Fatalf("started attempt = %+v, want one active question", a)
	}

	e.clock.Advance(10 * time.Second)

	got, err := svc.Submit(ctx, a.ID, []entities.Answer{{QuestionID: g.question.ID, OptionID: g.paris.ID}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.Score != 1 || got.Status != entities.AttemptGraded {
		t.Fatalf("Submit() score = %d status = %s, want 1 graded", got.Score, got.Status)
	}
	if got.TimeTakenSeconds == nil || *got.TimeTakenSeconds != 10 {
		t.Fatalf("TimeTakenSeconds = %v, want 10", got.TimeTakenSeconds)
	}

	responses, err := svc.ListResponses(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListResponses() error = %v", err)
	}
	if len(responses) != 1 || !responses[0].IsCorrect || *responses[0].OptionID != g.paris.ID {
		t.Fatalf("responses = %+v, want one correct response for Paris", responses)
	}

	r, err := svc.GetResponseForQuestion(ctx, a.ID, g.question.ID)
	if err != nil {
		t.Fatalf("GetResponseForQuestion() error = %v", err)
	}
	if r.QuestionID != g.question.ID {
		t.Fatalf("response question = %d, want %d", r.QuestionID, g.question.ID)
	}
}

func TestSubmitAfterTimeLimitExpires(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 300)
	student := e.user(t, "student_1", entities.RoleStudent)
	svc := e.attempts()

	a, err := svc.Start(ctx, student.ID, g.details.Quiz.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	e.clock.Advance(310 * time.Second)

	exceeded, err := svc.HasTimeLimitExceeded(ctx, a.ID)
	if err != nil || !exceeded {
		t.Fatalf("HasTimeLimitExceeded() = (%v, %v), want (true, nil)", exceeded, err)
	}

	got, err := svc.Submit(ctx, a.ID, []entities.Answer{{QuestionID: g.question.ID, OptionID: g.paris.ID}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.Score != 0 || got.Status != entities.AttemptExpired {
		t.Fatalf("Submit() score = %d status = %s, want 0 expired", got.Score, got.Status)
	}
	if got.TimeTakenSeconds == nil || *got.TimeTakenSeconds != 310 {
		t.Fatalf("TimeTakenSeconds = %v, want 310", got.TimeTakenSeconds)
	}

	responses, err := svc.ListResponses(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListResponses() error = %v", err)
	}
	if len(responses) != 0 {
		t.Fatalf("responses = %d, want none for an expired attempt", len(responses))
	}
}

func TestSubmitAtExactLimitIsGraded(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 300)
	student := e.user(t, "student_1", entities.RoleStudent)
	svc := e.attempts()

	a, err := svc.Start(ctx, student.ID, g.details.Quiz.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	e.clock.Advance(300*time.Second + 900*time.Millisecond)

	got, err := svc.Submit(ctx, a.ID, []entities.Answer{{QuestionID: g.question.ID, OptionID: g.paris.ID}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.Status != entities.AttemptGraded || got.Score != 1 {
		t.Fatalf("Submit() = %s/%d, want graded/1", got.Status, got.Score)
	}
}

func TestSubmitUntimedQuiz(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)
	student := e.user(t, "student_1", entities.RoleStudent)
	svc := e.attempts()

	a, err := svc.Start(ctx, student.ID, g.details.Quiz.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	e.clock.Advance(48 * time.Hour)

	got, err := svc.Submit(ctx, a.ID, []entities.Answer{{QuestionID: g.question.ID, OptionID: g.lyon.ID}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.Status != entities.AttemptGraded || got.Score != 0 {
		t.Fatalf("Submit() = %s/%d, want graded/0", got.Status, got.Score)
	}
}

func TestTotalQuestionsIsSnapshotAtStart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)
	student := e.user(t, "student_1", entities.RoleStudent)
	svc := e.attempts()

	a, err := svc.Start(ctx, student.ID, g.details.Quiz.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	_, err = e.quizzes().AddQuestion(ctx, g.details.Quiz.ID, g.professor.ID, QuestionInput{
		Text:    "Capital of Italy?",
		Options: []OptionInput{{Text: "Rome", IsCorrect: true}, {Text: "Milan"}},
	})
	if err != nil {
		t.Fatalf("AddQuestion() error = %v", err)
	}

	got, err := svc.Submit(ctx, a.ID, []entities.Answer{{QuestionID: g.question.ID, OptionID: g.paris.ID}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.TotalQuestions != 1 {
		t.Fatalf("TotalQuestions = %d, want 1 captured at start", got.TotalQuestions)
	}

	b, err := svc.Start(ctx, student.ID, g.details.Quiz.ID)
	if err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if b.TotalQuestions != 2 {
		t.Fatalf("new attempt TotalQuestions = %d, want 2", b.TotalQuestions)
	}
}

func TestSubmitTwiceConflicts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 300)
	student := e.user(t, "student_1", entities.RoleStudent)
	svc := e.attempts()

	a, err := svc.Start(ctx, student.ID, g.details.Quiz.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	answers := []entities.Answer{{QuestionID: g.question.ID, OptionID: g.paris.ID}}
	if _, err := svc.Submit(ctx, a.ID, answers); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	_, err = svc.Submit(ctx, a.ID, answers)
	assertKind(t, err, apperr.KindConflict)

	_, err = svc.AutoExpire(ctx, a.ID)
	assertKind(t, err, apperr.KindConflict)

	responses, err := svc.ListResponses(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListResponses() error = %v", err)
	}
	if len(responses) != 1 {
		t.Fatalf("responses = %d, want 1 after rejected resubmit", len(responses))
	}
}

func TestSubmitRollsBackOnInvalidAnswer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)
	student := e.user(t, "student_1", entities.RoleStudent)
	svc := e.attempts()

	a, err := svc.Start(ctx, student.ID, g.details.Quiz.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	_, err = svc.Submit(ctx, a.ID, []entities.Answer{{QuestionID: g.question.ID, OptionID: 9999}})
	assertNotFound(t, err)

	got, err := svc.GetAttempt(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAttempt() error = %v", err)
	}
	if got.Status != entities.AttemptActive || got.EndTime != nil {
		t.Fatalf("attempt after failed submit = %+v, want untouched active attempt", got)
	}

	got, err = svc.Submit(ctx, a.ID, []entities.Answer{{QuestionID: g.question.ID, OptionID: g.paris.ID}})
	if err != nil {
		t.Fatalf("retry Submit() error = %v", err)
	}
	if got.Score != 1 {
		t.Fatalf("retry score = %d, want 1", got.Score)
	}
}

func TestSubmitRejectsTooManyAnswers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)
	student := e.user(t, "student_1", entities.RoleStudent)
	svc := e.attempts()

	a, err := svc.Start(ctx, student.ID, g.details.Quiz.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	_, err = svc.Submit(ctx, a.ID, []entities.Answer{
		{QuestionID: g.question.ID, OptionID: g.paris.ID},
		{QuestionID: g.question.ID, OptionID: g.lyon.ID},
	})
	assertKind(t, err, apperr.KindValidation)
}

func TestStartErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)
	student := e.user(t, "student_1", entities.RoleStudent)
	svc := e.attempts()

	_, err := svc.Start(ctx, 4242, g.details.Quiz.ID)
	assertNotFound(t, err)

	_, err = svc.Start(ctx, student.ID, 4242)
	assertNotFound(t, err)

	_, err = svc.StartByClerkID(ctx, "missing", g.details.Quiz.ID)
	assertNotFound(t, err)

	a, err := svc.StartByClerkID(ctx, student.ClerkID, g.details.Quiz.ID)
	if err != nil {
		t.Fatalf("StartByClerkID() error = %v", err)
	}
	if a.UserID != student.ID {
		t.Fatalf("attempt user = %d, want %d", a.UserID, student.ID)
	}
}

func TestAutoExpire(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 60)
	student := e.user(t, "student_1", entities.RoleStudent)
	svc := e.attempts()

	a, err := svc.Start(ctx, student.ID, g.details.Quiz.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	e.clock.Advance(90 * time.Second)

	got, err := svc.AutoExpire(ctx, a.ID)
	if err != nil {
		t.Fatalf("AutoExpire() error = %v", err)
	}
	if got.Status != entities.AttemptExpired || got.Score != 0 || *got.TimeTakenSeconds != 90 {
		t.Fatalf("AutoExpire() = %+v, want expired with 90s taken", got)
	}

	_, err = svc.Submit(ctx, a.ID, []entities.Answer{{QuestionID: g.question.ID, OptionID: g.paris.ID}})
	assertKind(t, err, apperr.KindConflict)

	_, err = svc.AutoExpire(ctx, 4242)
	assertNotFound(t, err)
}

func TestListAttempts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)
	student := e.user(t, "student_1", entities.RoleStudent)
	svc := e.attempts()

	var ids []int64
	for i := 0; i < 3; i++ {
		a, err := svc.Start(ctx, student.ID, g.details.Quiz.ID)
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		ids = append(ids, a.ID)
		e.clock.Advance(time.Minute)
	}

	all, err := svc.ListUserAttempts(ctx, student.ClerkID)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListUserAttempts() = (%d, %v), want 3", len(all), err)
	}

	recent, err := svc.ListRecentUserAttempts(ctx, student.ClerkID, 2)
	if err != nil {
		t.Fatalf("ListRecentUserAttempts() error = %v", err)
	}
	if len(recent) != 2 || recent[0].ID != ids[2] {
		t.Fatalf("recent attempts = %d (first %d), want 2 starting with %d", len(recent), recent[0].ID, ids[2])
	}

	byQuiz, err := svc.ListQuizAttempts(ctx, g.details.Quiz.ID)
	if err != nil || len(byQuiz) != 3 {
		t.Fatalf("ListQuizAttempts() = (%d, %v), want 3", len(byQuiz), err)
	}

	mine, err := svc.ListUserQuizAttempts(ctx, student.ID, g.details.Quiz.ID)
	if err != nil || len(mine) != 3 {
		t.Fatalf("ListUserQuizAttempts() = (%d, %v), want 3", len(mine), err)
	}

	_, err = svc.ListQuizAttempts(ctx, 4242)
	assertNotFound(t, err)
}

func TestDeleteAttempt(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)
	student := e.user(t, "student_1", entities.RoleStudent)
	svc := e.attempts()

	a, err := svc.Start(ctx, student.ID, g.details.Quiz.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := svc.Submit(ctx, a.ID, []entities.Answer{{QuestionID: g.question.ID, OptionID: g.paris.ID}}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if err := svc.DeleteAttempt(ctx, a.ID); err != nil {
		t.Fatalf("DeleteAttempt() error = %v", err)
	}
	assertNotFound(t, svc.DeleteAttempt(ctx, a.ID))

	_, err = svc.GetAttempt(ctx, a.ID)
	assertNotFound(t, err)
}
