package repository

// QuizStats aggregates the attempts of a single quiz.
type QuizStats struct {
	QuizID          int64
	AttemptCount    int64
	AverageScore    float64 // mean score over graded and expired attempts
	AverageTimeSecs float64 // mean time taken over finished attempts
}

// QuestionMiss counts wrong responses to a question.
type QuestionMiss struct {
	QuestionID int64
	Text       string
	Misses     int64
}

// QuestionStats aggregates the responses to a single question.
type QuestionStats struct {
	QuestionID     int64
	TotalResponses int64
	CorrectCount   int64
}

// CorrectPercentage returns the share of correct responses in percent.
func (s *QuestionStats) CorrectPercentage() float64 {
	if s.TotalResponses == 0 {
		return 0
	}
	return float64(s.CorrectCount) * 100 / float64(s.TotalResponses)
}

// OptionCount counts how many responses chose an option.
type OptionCount struct {
	OptionID  int64
	Text      string
	IsCorrect bool
	Count     int64
}

// SystemStats summarizes platform activity.
type SystemStats struct {
	TotalQuizzes   int64
	TotalAttempts  int64
	TotalUsers     int64
	RecentAttempts int64 // attempts started since the requested instant
}
