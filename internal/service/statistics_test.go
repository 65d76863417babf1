package service

import (
	"context"
	"testing"
	"time"

	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
)

func TestStatisticsService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)
	alice := e.user(t, "alice", entities.RoleStudent)
	bob := e.user(t, "bob", entities.RoleStudent)

	e.takeQuiz(t, alice.ID, g.details.Quiz.ID,
		[]entities.Answer{{QuestionID: g.question.ID, OptionID: g.paris.ID}},
		[]entities.Answer{{QuestionID: g.question.ID, OptionID: g.lyon.ID}},
	)
	e.takeQuiz(t, bob.ID, g.details.Quiz.ID,
		[]entities.Answer{{QuestionID: g.question.ID, OptionID: g.lyon.ID}},
	)

	svc := NewStatisticsService(e.store, WithClock(e.clock.Now))

	qs, err := svc.Quiz(ctx, g.details.Quiz.ID)
	if err != nil {
		t.Fatalf("Quiz() error = %v", err)
	}
	if qs.AttemptCount != 3 {
		t.Fatalf("AttemptCount = %d, want 3", qs.AttemptCount)
	}
	if want := 1.0 / 3.0; qs.AverageScore < want-0.001 || qs.AverageScore > want+0.001 {
		t.Fatalf("AverageScore = %f, want %f", qs.AverageScore, want)
	}
	if len(qs.MostMissed) != 1 || qs.MostMissed[0].Misses != 2 {
		t.Fatalf("MostMissed = %+v, want one question missed twice", qs.MostMissed)
	}

	q, err := svc.Question(ctx, g.question.ID)
	if err != nil {
		t.Fatalf("Question() error = %v", err)
	}
	if q.TotalResponses != 3 || q.CorrectCount != 1 {
		t.Fatalf("Question() = %+v, want 3 responses with 1 correct", q.QuestionStats)
	}
	if len(q.Options) != 2 || q.Options[0].Count != 1 || q.Options[1].Count != 2 {
		t.Fatalf("option distribution = %+v, want Paris 1 and Lyon 2", q.Options)
	}

	sys, err := svc.System(ctx)
	if err != nil {
		t.Fatalf("System() error = %v", err)
	}
	if sys.TotalQuizzes != 1 || sys.TotalAttempts != 3 || sys.TotalUsers != 3 || sys.RecentAttempts != 3 {
		t.Fatalf("System() = %+v", sys)
	}

	e.clock.Advance(8 * 24 * time.Hour)
	sys, err = svc.System(ctx)
	if err != nil || sys.RecentAttempts != 0 {
		t.Fatalf("System() a week later = (%+v, %v), want no recent attempts", sys, err)
	}

	_, err = svc.Quiz(ctx, 4242)
	assertNotFound(t, err)
	_, err = svc.Question(ctx, 4242)
	assertNotFound(t, err)
}
