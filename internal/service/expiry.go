package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
)

const (
	DefaultExpirySchedule  = "@every 1m"
	DefaultExpiryBatchSize = 100
)

// ExpiryService periodically expires active attempts that outlived the
// time limit of their quiz.
type ExpiryService struct {
	store     repository.Store
	attempts  *AttemptService
	schedule  string
	batchSize int
	logger    *zap.Logger
	now       func() time.Time
}

// NewExpiryService creates a new expiry service. Empty schedule and
// non-positive batch size fall back to the defaults.
func NewExpiryService(
	store repository.Store,
	attempts *AttemptService,
	schedule string,
	batchSize int,
	logger *zap.Logger,
	opts ...Option,
) *ExpiryService {
	if schedule == "" {
		schedule = DefaultExpirySchedule
	}
	if batchSize <= 0 {
		batchSize = DefaultExpiryBatchSize
	}
	o := newOptions(opts)
	return &ExpiryService{
		store:     store,
		attempts:  attempts,
		schedule:  schedule,
		batchSize: batchSize,
		logger:    logger,
		now:       o.now,
	}
}

// Start runs the sweep on the configured schedule until ctx is done.
func (s *ExpiryService) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("failed to expire overdue attempts", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("add expiry job %q: %w", s.schedule, err)
	}

	c.Start()
	s.logger.Info("expiry service started", zap.String("schedule", s.schedule))

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("expiry service stopped")
	return nil
}

// Sweep expires every overdue attempt and returns how many were expired.
// Attempts closed concurrently by a submit are skipped.
func (s *ExpiryService) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	total := 0

	for {
		overdue, err := s.store.Attempts().ListOverdue(ctx, now, s.batchSize)
		if err != nil {
			return total, fmt.Errorf("list overdue attempts: %w", err)
		}
		if len(overdue) == 0 {
			break
		}

		expired, handled := s.processBatch(ctx, overdue)
		total += expired

		// Attempts that failed to expire stay overdue; stop instead of refetching them.
		if len(overdue) < s.batchSize || handled < len(overdue) {
			break
		}
	}

	if total > 0 {
		s.logger.Info("overdue attempts expired", zap.Int("count", total))
	}
	return total, nil
}

// processBatch expires a batch of attempts concurrently. It returns the
// number of attempts it expired and the number that are no longer active.
func (s *ExpiryService) processBatch(ctx context.Context, batch []*entities.QuizAttempt) (int, int) {
	const maxConcurrent = 4
	sem := make(chan struct{}, maxConcurrent)

	var (
		wg      sync.WaitGroup
		expired atomic.Int64
		handled atomic.Int64
	)

	for _, a := range batch {
		select {
		case <-ctx.Done():
			wg.Wait()
			return int(expired.Load()), int(handled.Load())
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(attemptID int64) {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := s.attempts.AutoExpire(ctx, attemptID)
			switch {
			case err == nil:
				expired.Add(1)
				handled.Add(1)
			case errors.Is(err, apperr.ErrConflict):
				// Submitted between listing and expiry.
				handled.Add(1)
			default:
				s.logger.Error("failed to expire attempt",
					zap.Int64("attempt_id", attemptID),
					zap.Error(err),
				)
			}
		}(a.ID)
	}

	wg.Wait()
	return int(expired.Load()), int(handled.Load())
}
