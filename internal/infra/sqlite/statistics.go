package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mylearnapp/quiz-platform/internal/repository"
)

type statsRepo struct {
	db DBTX
}

func (r *statsRepo) QuizStats(ctx context.Context, quizID int64) (*repository.QuizStats, error) {
	stats := &repository.QuizStats{QuizID: quizID}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(CASE WHEN status <> 'active' THEN score END), 0.0),
		       COALESCE(AVG(time_taken_seconds), 0.0)
		FROM quiz_attempts
		WHERE quiz_id = ?`, quizID).Scan(&stats.AttemptCount, &stats.AverageScore, &stats.AverageTimeSecs)
	if err != nil {
		return nil, fmt.Errorf("quiz stats: %w", err)
	}
	return stats, nil
}

func (r *statsRepo) MostMissedQuestions(ctx context.Context, quizID int64, limit int) ([]repository.QuestionMiss, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT q.id, q.text, COUNT(r.id) AS misses
		FROM questions q
		JOIN responses r ON r.question_id = q.id AND r.is_correct = 0
		WHERE q.quiz_id = ?
		GROUP BY q.id, q.text
		ORDER BY misses DESC, q.id
		LIMIT ?`, quizID, limit)
	if err != nil {
		return nil, fmt.Errorf("most missed questions: %w", err)
	}
	defer rows.Close()

	var misses []repository.QuestionMiss
	for rows.Next() {
		var m repository.QuestionMiss
		if err := rows.Scan(&m.QuestionID, &m.Text, &m.Misses); err != nil {
			return nil, fmt.Errorf("scan question miss: %w", err)
		}
		misses = append(misses, m)
	}
	return misses, rows.Err()
}

func (r *statsRepo) QuestionStats(ctx context.Context, questionID int64) (*repository.QuestionStats, error) {
	stats := &repository.QuestionStats{QuestionID: questionID}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0)
		FROM responses
		WHERE question_id = ?`, questionID).Scan(&stats.TotalResponses, &stats.CorrectCount)
	if err != nil {
		return nil, fmt.Errorf("question stats: %w", err)
	}
	return stats, nil
}

func (r *statsRepo) OptionDistribution(ctx context.Context, questionID int64) ([]repository.OptionCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.text, o.is_correct, COUNT(r.id)
		FROM options o
		LEFT JOIN responses r ON r.option_id = o.id
		WHERE o.question_id = ?
		GROUP BY o.id, o.text, o.is_correct
		ORDER BY o.id`, questionID)
	if err != nil {
		return nil, fmt.Errorf("option distribution: %w", err)
	}
	defer rows.Close()

	var counts []repository.OptionCount
	for rows.Next() {
		var c repository.OptionCount
		if err := rows.Scan(&c.OptionID, &c.Text, &c.IsCorrect, &c.Count); err != nil {
			return nil, fmt.Errorf("scan option count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *statsRepo) SystemStats(ctx context.Context, since time.Time) (*repository.SystemStats, error) {
	var s repository.SystemStats
	err := r.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM quizzes),
		       (SELECT COUNT(*) FROM quiz_attempts),
		       (SELECT COUNT(*) FROM users),
		       (SELECT COUNT(*) FROM quiz_attempts WHERE start_time >= ?)`,
		toMillis(since)).Scan(&s.TotalQuizzes, &s.TotalAttempts, &s.TotalUsers, &s.RecentAttempts)
	if err != nil {
		return nil, fmt.Errorf("system stats: %w", err)
	}
	return &s, nil
}
