package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
)

func TestExpirySweep(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	timed := e.geographyQuiz(t, 60)
	untimed := e.geographyQuiz2(t, timed.professor)
	student := e.user(t, "student_1", entities.RoleStudent)
	attempts := e.attempts()

	var overdue []int64
	for i := 0; i < 3; i++ {
		a, err := attempts.Start(ctx, student.ID, timed.details.Quiz.ID)
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		overdue = append(overdue, a.ID)
	}
	open, err := attempts.Start(ctx, student.ID, untimed.details.Quiz.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	e.clock.Advance(61 * time.Second)
	fresh, err := attempts.Start(ctx, student.ID, timed.details.Quiz.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	sweeper := NewExpiryService(e.store, attempts, "", 2, zap.NewNop(), WithClock(e.clock.Now))

	n, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if n != len(overdue) {
		t.Fatalf("Sweep() = %d, want %d", n, len(overdue))
	}

	for _, id := range overdue {
		a, err := attempts.GetAttempt(ctx, id)
		if err != nil || a.Status != entities.AttemptExpired || a.Score != 0 {
			t.Fatalf("attempt %d = (%+v, %v), want expired", id, a, err)
		}
	}
	for _, id := range []int64{open.ID, fresh.ID} {
		a, err := attempts.GetAttempt(ctx, id)
		if err != nil || a.Status != entities.AttemptActive {
			t.Fatalf("attempt %d = (%+v, %v), want still active", id, a, err)
		}
	}

	if n, err := sweeper.Sweep(ctx); err != nil || n != 0 {
		t.Fatalf("second Sweep() = (%d, %v), want nothing to expire", n, err)
	}
}

func TestExpiryStartRejectsBadSchedule(t *testing.T) {
	e := newEnv(t)
	sweeper := NewExpiryService(e.store, e.attempts(), "not a schedule", 0, zap.NewNop())

	if err := sweeper.Start(context.Background()); err == nil {
		t.Fatal("Start() error = nil, want invalid schedule error")
	}
}
