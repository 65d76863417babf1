package entities

// Question is a single multiple-choice question of a quiz.
type Question struct {
	ID       int64     // unique question ID
	QuizID   int64     // owning quiz ID
	Text     string    // question text
	Position int       // display order within the quiz
	Options  []*Option // answer options, populated when loaded with options
}

// Option is a possible answer to a question.
type Option struct {
	ID         int64  // unique option ID
	QuestionID int64  // owning question ID
	Text       string // option text
	IsCorrect  bool   // whether choosing this option scores a point
}

// CorrectCount returns how many options are marked correct.
func (q *Question) CorrectCount() int {
	n := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			n++
		}
	}
	return n
}
