package entities

// QuizDraft is generated quiz content that has not been stored yet.
type QuizDraft struct {
	Title       string
	Description string
	Questions   []DraftQuestion
}

type DraftQuestion struct {
	Text    string
	Options []DraftOption
}

type DraftOption struct {
	Text      string
	IsCorrect bool
}
