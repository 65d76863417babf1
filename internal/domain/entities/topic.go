package entities

// Topic groups quizzes by subject.
type Topic struct {
	ID          int64
	Name        string // unique topic name
	Description string
}
