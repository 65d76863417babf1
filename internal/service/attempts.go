package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
)

// DefaultRecentAttempts is the page size of recent attempt listings.
const DefaultRecentAttempts = 10

// AttemptService manages the lifecycle of quiz attempts: start, submit,
// expiry and the read and delete operations around them.
type AttemptService struct {
	store  repository.Store
	tr     repository.Transactor
	logger *zap.Logger
	now    func() time.Time
}

func NewAttemptService(store repository.Store, tr repository.Transactor, logger *zap.Logger, opts ...Option) *AttemptService {
	o := newOptions(opts)
	return &AttemptService{
		store:  store,
		tr:     tr,
		logger: logger,
		now:    o.now,
	}
}

// Start opens an attempt for the user on the quiz. The question count is
// captured now and never recomputed.
func (s *AttemptService) Start(ctx context.Context, userID, quizID int64) (*entities.QuizAttempt, error) {
	var attempt *entities.QuizAttempt
	err := s.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		if _, err := st.Users().GetByID(ctx, userID); err != nil {
			return err
		}

		var err error
		attempt, err = s.start(ctx, st, userID, quizID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logStarted(attempt)
	return attempt, nil
}

// StartByClerkID is Start for a user identified by the external identity ID.
func (s *AttemptService) StartByClerkID(ctx context.Context, clerkID string, quizID int64) (*entities.QuizAttempt, error) {
	var attempt *entities.QuizAttempt
	err := s.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		user, err := st.Users().GetByClerkID(ctx, clerkID)
		if err != nil {
			return err
		}

		attempt, err = s.start(ctx, st, user.ID, quizID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logStarted(attempt)
	return attempt, nil
}

func (s *AttemptService) start(ctx context.Context, st repository.Store, userID, quizID int64) (*entities.QuizAttempt, error) {
	if _, err := st.Quizzes().GetByID(ctx, quizID); err != nil {
		return nil, err
	}

	total, err := st.Questions().CountByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	attempt := entities.NewQuizAttempt(userID, quizID, total, s.now())
	id, err := st.Attempts().Create(ctx, attempt)
	if err != nil {
		return nil, err
	}
	attempt.ID = id

	return attempt, nil
}

func (s *AttemptService) logStarted(a *entities.QuizAttempt) {
	s.logger.Info("quiz attempt started",
		zap.Int64("attempt_id", a.ID),
		zap.Int64("user_id", a.UserID),
		zap.Int64("quiz_id", a.QuizID),
		zap.Int("total_questions", a.TotalQuestions),
	)
}

// Submit closes an active attempt. When the quiz time limit was exceeded the
// answers are discarded and the attempt is expired with a zero score;
// otherwise the answers are graded and stored as responses.
func (s *AttemptService) Submit(ctx context.Context, attemptID int64, answers []entities.Answer) (*entities.QuizAttempt, error) {
	var attempt *entities.QuizAttempt
	err := s.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		var err error
		attempt, err = st.Attempts().GetByID(ctx, attemptID)
		if err != nil {
			return err
		}
		if !attempt.IsActive() {
			return notActive(attempt)
		}

		quiz, err := st.Quizzes().GetByID(ctx, attempt.QuizID)
		if err != nil {
			return err
		}

		end := s.now()
		if attempt.ExceedsLimit(quiz, end) {
			if err := attempt.Expire(end); err != nil {
				return err
			}
			s.logger.Info("quiz attempt submitted after time limit",
				zap.Int64("attempt_id", attempt.ID),
				zap.Int64("time_taken_seconds", *attempt.TimeTakenSeconds),
				zap.Int("time_limit_seconds", quiz.TimeLimitSeconds),
			)
			return st.Attempts().Update(ctx, attempt)
		}

		if len(answers) > attempt.TotalQuestions {
			return apperr.Errorf(apperr.KindValidation,
				"%d answers submitted for an attempt with %d questions", len(answers), attempt.TotalQuestions)
		}

		responses, correct, err := NewScoringEngine(st.Questions(), st.Options()).Grade(ctx, attempt.QuizID, answers)
		if err != nil {
			return err
		}
		for _, r := range responses {
			r.AttemptID = attempt.ID
		}
		if err := st.Responses().CreateBatch(ctx, responses); err != nil {
			return err
		}

		if err := attempt.Grade(correct, end); err != nil {
			return err
		}
		return st.Attempts().Update(ctx, attempt)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quiz attempt closed",
		zap.Int64("attempt_id", attempt.ID),
		zap.String("status", string(attempt.Status)),
		zap.Int("score", attempt.Score),
		zap.Int("total_questions", attempt.TotalQuestions),
	)

	return attempt, nil
}

// AutoExpire closes an active attempt with a zero score and no responses.
func (s *AttemptService) AutoExpire(ctx context.Context, attemptID int64) (*entities.QuizAttempt, error) {
	var attempt *entities.QuizAttempt
	err := s.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		var err error
		attempt, err = st.Attempts().GetByID(ctx, attemptID)
		if err != nil {
			return err
		}
		if err := attempt.Expire(s.now()); err != nil {
			if errors.Is(err, entities.ErrAttemptNotActive) {
				return notActive(attempt)
			}
			return err
		}
		return st.Attempts().Update(ctx, attempt)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quiz attempt expired", zap.Int64("attempt_id", attempt.ID))

	return attempt, nil
}

// HasTimeLimitExceeded reports whether the attempt is past its quiz time limit now.
func (s *AttemptService) HasTimeLimitExceeded(ctx context.Context, attemptID int64) (bool, error) {
	attempt, err := s.store.Attempts().GetByID(ctx, attemptID)
	if err != nil {
		return false, err
	}
	quiz, err := s.store.Quizzes().GetByID(ctx, attempt.QuizID)
	if err != nil {
		return false, err
	}

	return attempt.ExceedsLimit(quiz, s.now()), nil
}

func (s *AttemptService) GetAttempt(ctx context.Context, attemptID int64) (*entities.QuizAttempt, error) {
	return s.store.Attempts().GetByID(ctx, attemptID)
}

// ListUserAttempts returns all attempts of the user, newest first.
func (s *AttemptService) ListUserAttempts(ctx context.Context, clerkID string) ([]*entities.QuizAttempt, error) {
	user, err := s.store.Users().GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.store.Attempts().ListByUser(ctx, user.ID)
}

// ListRecentUserAttempts returns up to limit attempts of the user, newest first.
func (s *AttemptService) ListRecentUserAttempts(ctx context.Context, clerkID string, limit int) ([]*entities.QuizAttempt, error) {
	if limit <= 0 {
		limit = DefaultRecentAttempts
	}
	user, err := s.store.Users().GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.store.Attempts().ListRecentByUser(ctx, user.ID, limit)
}

func (s *AttemptService) ListQuizAttempts(ctx context.Context, quizID int64) ([]*entities.QuizAttempt, error) {
	if _, err := s.store.Quizzes().GetByID(ctx, quizID); err != nil {
		return nil, err
	}
	return s.store.Attempts().ListByQuiz(ctx, quizID)
}

func (s *AttemptService) ListUserQuizAttempts(ctx context.Context, userID, quizID int64) ([]*entities.QuizAttempt, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.store.Quizzes().GetByID(ctx, quizID); err != nil {
		return nil, err
	}
	return s.store.Attempts().ListByUserAndQuiz(ctx, userID, quizID)
}

func (s *AttemptService) ListResponses(ctx context.Context, attemptID int64) ([]*entities.Response, error) {
	if _, err := s.store.Attempts().GetByID(ctx, attemptID); err != nil {
		return nil, err
	}
	return s.store.Responses().ListByAttempt(ctx, attemptID)
}

func (s *AttemptService) GetResponseForQuestion(ctx context.Context, attemptID, questionID int64) (*entities.Response, error) {
	if _, err := s.store.Attempts().GetByID(ctx, attemptID); err != nil {
		return nil, err
	}
	return s.store.Responses().GetByAttemptAndQuestion(ctx, attemptID, questionID)
}

// DeleteAttempt removes the attempt and its responses.
func (s *AttemptService) DeleteAttempt(ctx context.Context, attemptID int64) error {
	var responses int64
	err := s.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		if _, err := st.Attempts().GetByID(ctx, attemptID); err != nil {
			return err
		}

		var err error
		if responses, err = st.Responses().DeleteByAttempt(ctx, attemptID); err != nil {
			return err
		}
		_, err = st.Attempts().Delete(ctx, attemptID)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("quiz attempt deleted",
		zap.Int64("attempt_id", attemptID),
		zap.Int64("responses", responses),
	)
	return nil
}

func notActive(a *entities.QuizAttempt) error {
	return apperr.Errorf(apperr.KindConflict, "quiz attempt %d is already %s", a.ID, a.Status)
}
