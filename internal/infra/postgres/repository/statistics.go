package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mylearnapp/quiz-platform/internal/infra/postgres"
	ports "github.com/mylearnapp/quiz-platform/internal/repository"
)

// StatisticsRepository runs read-only aggregate queries.
type StatisticsRepository struct {
	db postgres.DBTX
}

func NewStatisticsRepository(db postgres.DBTX) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

func (r *StatisticsRepository) QuizStats(ctx context.Context, quizID int64) (*ports.QuizStats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(AVG(score) FILTER (WHERE status <> 'active'), 0),
		       COALESCE(AVG(time_taken_seconds), 0)
		FROM quiz_attempts
		WHERE quiz_id = $1
	`

	stats := &ports.QuizStats{QuizID: quizID}
	err := r.db.QueryRow(ctx, query, quizID).Scan(&stats.AttemptCount, &stats.AverageScore, &stats.AverageTimeSecs)
	if err != nil {
		return nil, fmt.Errorf("quiz stats: %w", err)
	}

	return stats, nil
}

func (r *StatisticsRepository) MostMissedQuestions(ctx context.Context, quizID int64, limit int) ([]ports.QuestionMiss, error) {
	query := `
		SELECT q.id, q.text, COUNT(r.id) AS misses
		FROM questions q
		JOIN responses r ON r.question_id = q.id AND NOT r.is_correct
		WHERE q.quiz_id = $1
		GROUP BY q.id, q.text
		ORDER BY misses DESC, q.id
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, quizID, limit)
	if err != nil {
		return nil, fmt.Errorf("most missed questions: %w", err)
	}
	defer rows.Close()

	var misses []ports.QuestionMiss
	for rows.Next() {
		var m ports.QuestionMiss
		if err := rows.Scan(&m.QuestionID, &m.Text, &m.Misses); err != nil {
			return nil, fmt.Errorf("scan question miss: %w", err)
		}
		misses = append(misses, m)
	}

	return misses, rows.Err()
}

func (r *StatisticsRepository) QuestionStats(ctx context.Context, questionID int64) (*ports.QuestionStats, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_correct)
		FROM responses
		WHERE question_id = $1
	`

	stats := &ports.QuestionStats{QuestionID: questionID}
	if err := r.db.QueryRow(ctx, query, questionID).Scan(&stats.TotalResponses, &stats.CorrectCount); err != nil {
		return nil, fmt.Errorf("question stats: %w", err)
	}

	return stats, nil
}

func (r *StatisticsRepository) OptionDistribution(ctx context.Context, questionID int64) ([]ports.OptionCount, error) {
	query := `
		SELECT o.id, o.text, o.is_correct, COUNT(r.id)
		FROM options o
		LEFT JOIN responses r ON r.option_id = o.id
		WHERE o.question_id = $1
		GROUP BY o.id, o.text, o.is_correct
		ORDER BY o.id
	`

	rows, err := r.db.Query(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("option distribution: %w", err)
	}
	defer rows.Close()

	var counts []ports.OptionCount
	for rows.Next() {
		var c ports.OptionCount
		if err := rows.Scan(&c.OptionID, &c.Text, &c.IsCorrect, &c.Count); err != nil {
			return nil, fmt.Errorf("scan option count: %w", err)
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

func (r *StatisticsRepository) SystemStats(ctx context.Context, since time.Time) (*ports.SystemStats, error) {
	query := `
		SELECT (SELECT COUNT(*) FROM quizzes),
		       (SELECT COUNT(*) FROM quiz_attempts),
		       (SELECT COUNT(*) FROM users),
		       (SELECT COUNT(*) FROM quiz_attempts WHERE start_time >= $1)
	`

	var s ports.SystemStats
	err := r.db.QueryRow(ctx, query, since).Scan(&s.TotalQuizzes, &s.TotalAttempts, &s.TotalUsers, &s.RecentAttempts)
	if err != nil {
		return nil, fmt.Errorf("system stats: %w", err)
	}

	return &s, nil
}
