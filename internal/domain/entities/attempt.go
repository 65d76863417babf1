package entities

import (
	"errors"
	"time"
)

// ErrAttemptNotActive is returned when a terminal attempt is asked to transition again.
var ErrAttemptNotActive = errors.New("quiz attempt is not active")

// AttemptStatus is the lifecycle state of an attempt.
type AttemptStatus string

const (
	AttemptActive  AttemptStatus = "active"
	AttemptGraded  AttemptStatus = "graded"
	AttemptExpired AttemptStatus = "expired"
)

// QuizAttempt is one student's timed pass over a quiz.
// Graded and Expired are terminal: a terminal attempt is never modified again.
type QuizAttempt struct {
	ID               int64         // unique attempt ID
	UserID           int64         // user taking the quiz
	QuizID           int64         // quiz being taken
	StartTime        time.Time     // timestamp when the attempt started
	EndTime          *time.Time    // timestamp when the attempt ended (nullable)
	Score            int           // number of correct answers
	TotalQuestions   int           // question count snapshot taken at start
	TimeTakenSeconds *int64        // whole seconds between start and end (nullable)
	Status           AttemptStatus // active, graded or expired
	Version          int           // optimistic lock counter
}

// NewQuizAttempt creates an active attempt started at now.
func NewQuizAttempt(userID, quizID int64, totalQuestions int, now time.Time) *QuizAttempt {
	return &QuizAttempt{
		UserID:         userID,
		QuizID:         quizID,
		StartTime:      now,
		TotalQuestions: totalQuestions,
		Status:         AttemptActive,
	}
}

// IsActive reports whether the attempt still accepts a submission.
func (a *QuizAttempt) IsActive() bool {
	return a.Status == AttemptActive
}

// ElapsedSeconds returns the whole seconds between the start and t, truncated.
func (a *QuizAttempt) ElapsedSeconds(t time.Time) int64 {
	return int64(t.Sub(a.StartTime) / time.Second)
}

// ExceedsLimit reports whether the attempt ran over the quiz limit at t.
func (a *QuizAttempt) ExceedsLimit(quiz *Quiz, t time.Time) bool {
	return quiz.HasTimeLimit() && a.ElapsedSeconds(t) > int64(quiz.TimeLimitSeconds)
}

// Grade closes the attempt with the given score.
func (a *QuizAttempt) Grade(score int, end time.Time) error {
	if err := a.finish(end); err != nil {
		return err
	}
	a.Score = score
	a.Status = AttemptGraded
	return nil
}

// Expire closes the attempt with a zero score.
func (a *QuizAttempt) Expire(end time.Time) error {
	if err := a.finish(end); err != nil {
		return err
	}
	a.Score = 0
	a.Status = AttemptExpired
	return nil
}

func (a *QuizAttempt) finish(end time.Time) error {
	if !a.IsActive() {
		return ErrAttemptNotActive
	}
	taken := a.ElapsedSeconds(end)
	a.EndTime = &end
	a.TimeTakenSeconds = &taken
	return nil
}

// Response records the option a student chose for a question.
type Response struct {
	ID         int64  // unique response ID
	AttemptID  int64  // owning attempt ID
	QuestionID int64  // answered question ID
	OptionID   *int64 // chosen option ID (nullable)
	IsCorrect  bool   // copied from the chosen option at grading time
}

// Answer is one entry of a submitted answer map.
type Answer struct {
	QuestionID int64
	OptionID   int64
}
