package entities

import "time"

// Defaults applied to quizzes created without presentation attributes.
const (
	DefaultQuizIcon      = "Brain"
	DefaultQuizColor     = "from-blue-500 to-cyan-600"
	DefaultTimeLimitSecs = 300
)

// Quiz represents a quiz authored by a professor.
// A zero TimeLimitSeconds means the quiz is untimed.
type Quiz struct {
	ID               int64     // unique quiz ID
	Title            string    // quiz title
	Description      string    // free-form description
	Difficulty       string    // difficulty label
	Category         string    // category label
	Icon             string    // presentation icon name
	Color            string    // presentation color gradient
	TimeLimitSeconds int       // time limit in seconds, 0 for unlimited
	TopicID          *int64    // owning topic (nullable)
	ProfessorID      *int64    // owning professor user ID (nullable)
	CreatedAt        time.Time // timestamp when the quiz was created
}

// HasTimeLimit reports whether attempts on the quiz are timed.
func (q *Quiz) HasTimeLimit() bool {
	return q.TimeLimitSeconds > 0
}

// TimeLimit returns the quiz time limit as a duration.
func (q *Quiz) TimeLimit() time.Duration {
	return time.Duration(q.TimeLimitSeconds) * time.Second
}

// OwnedBy reports whether the quiz belongs to the given professor.
func (q *Quiz) OwnedBy(professorID int64) bool {
	return q.ProfessorID != nil && *q.ProfessorID == professorID
}

// ApplyDefaults fills presentation attributes that were left empty.
func (q *Quiz) ApplyDefaults() {
	if q.Icon == "" {
		q.Icon = DefaultQuizIcon
	}
	if q.Color == "" {
		q.Color = DefaultQuizColor
	}
}
