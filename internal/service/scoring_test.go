package service

import (
	"context"
	"testing"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
)

func TestScoringEngineGrade(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	g := e.geographyQuiz(t, 0)

	q2, err := e.quizzes().AddQuestion(ctx, g.details.Quiz.ID, g.professor.ID, QuestionInput{
		Text:    "Largest ocean?",
		Options: []OptionInput{{Text: "Atlantic"}, {Text: "Pacific", IsCorrect: true}},
	})
	if err != nil {
		t.Fatalf("AddQuestion() error = %v", err)
	}

	other := e.geographyQuiz2(t, g.professor)

	engine := NewScoringEngine(e.store.Questions(), e.store.Options())

	tests := []struct {
		name    string
		answers []entities.Answer
		score   int
		kind    apperr.Kind
		wantErr bool
	}{
		{
			name:    "empty",
			answers: nil,
			score:   0,
		},
		{
			name: "all correct",
			answers: []entities.Answer{
				{QuestionID: g.question.ID, OptionID: g.paris.ID},
				{QuestionID: q2.ID, OptionID: q2.Options[1].ID},
			},
			score: 2,
		},
		{
			name: "one wrong",
			answers: []entities.Answer{
				{QuestionID: q2.ID, OptionID: q2.Options[0].ID},
				{QuestionID: g.question.ID, OptionID: g.paris.ID},
			},
			score: 1,
		},
		{
			name:    "unknown question",
			answers: []entities.Answer{{QuestionID: 9999, OptionID: g.paris.ID}},
			kind:    apperr.KindNotFound,
			wantErr: true,
		},
		{
			name:    "unknown option",
			answers: []entities.Answer{{QuestionID: g.question.ID, OptionID: 9999}},
			kind:    apperr.KindNotFound,
			wantErr: true,
		},
		{
			name:    "option of another question",
			answers: []entities.Answer{{QuestionID: g.question.ID, OptionID: q2.Options[1].ID}},
			kind:    apperr.KindValidation,
			wantErr: true,
		},
		{
			name:    "question of another quiz",
			answers: []entities.Answer{{QuestionID: other.question.ID, OptionID: other.paris.ID}},
			kind:    apperr.KindValidation,
			wantErr: true,
		},
		{
			name:    "option of another quiz",
			answers: []entities.Answer{{QuestionID: g.question.ID, OptionID: other.paris.ID}},
			kind:    apperr.KindValidation,
			wantErr: true,
		},
		{
			name: "duplicate question",
			answers: []entities.Answer{
				{QuestionID: g.question.ID, OptionID: g.paris.ID},
				{QuestionID: g.question.ID, OptionID: g.lyon.ID},
			},
			kind:    apperr.KindValidation,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses, score, err := engine.Grade(ctx, g.details.Quiz.ID, tt.answers)
			if tt.wantErr {
				assertKind(t, err, tt.kind)
				return
			}
			if err != nil {
				t.Fatalf("Grade() error = %v", err)
			}
			if score != tt.score {
				t.Fatalf("Grade() score = %d, want %d", score, tt.score)
			}
			if len(responses) != len(tt.answers) {
				t.Fatalf("Grade() responses = %d, want %d", len(responses), len(tt.answers))
			}
			for i, r := range responses {
				if r.QuestionID != tt.answers[i].QuestionID || *r.OptionID != tt.answers[i].OptionID {
					t.Fatalf("response %d = %+v, want answer %+v in input order", i, r, tt.answers[i])
				}
			}
		})
	}
}

// geographyQuiz2 creates a second, unrelated quiz owned by prof.
func (e *env) geographyQuiz2(t *testing.T, prof *entities.User) geographyQuiz {
	t.Helper()

	details, err := e.quizzes().CreateQuiz(context.Background(), prof.ID, QuizInput{
		Title: "Geography II",
		Questions: []QuestionInput{{
			Text:    "Capital of Spain?",
			Options: []OptionInput{{Text: "Madrid", IsCorrect: true}, {Text: "Seville"}},
		}},
	})
	if err != nil {
		t.Fatalf("CreateQuiz() error = %v", err)
	}

	q := details.Questions[0]
	return geographyQuiz{professor: prof, details: details, question: q, paris: q.Options[0], lyon: q.Options[1]}
}
