package service

import (
	"context"
	"fmt"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
)

// ScoringEngine turns a submitted answer map into graded responses.
// It reads through the repositories it was built with and never writes.
type ScoringEngine struct {
	questions repository.QuestionRepository
	options   repository.OptionRepository
}

func NewScoringEngine(questions repository.QuestionRepository, options repository.OptionRepository) *ScoringEngine {
	return &ScoringEngine{questions: questions, options: options}
}

// Grade resolves every answer against the quiz and returns one response per
// answer, in input order, together with the number of correct answers.
//
// A missing question or option aborts grading with NotFound. A question from
// another quiz, an option from another question, or a repeated question
// aborts with Validation.
func (e *ScoringEngine) Grade(ctx context.Context, quizID int64, answers []entities.Answer) ([]*entities.Response, int, error) {
	if len(answers) == 0 {
		return nil, 0, nil
	}

	questions, err := e.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, 0, fmt.Errorf("load quiz questions: %w", err)
	}
	options, err := e.options.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, 0, fmt.Errorf("load quiz options: %w", err)
	}

	questionByID := make(map[int64]*entities.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}
	optionByID := make(map[int64]*entities.Option, len(options))
	for _, o := range options {
		optionByID[o.ID] = o
	}

	responses := make([]*entities.Response, 0, len(answers))
	seen := make(map[int64]struct{}, len(answers))
	correct := 0

	for _, a := range answers {
		if _, dup := seen[a.QuestionID]; dup {
			return nil, 0, apperr.Errorf(apperr.KindValidation, "question %d answered more than once", a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}

		q, ok := questionByID[a.QuestionID]
		if !ok {
			// Distinguish a missing question from one that belongs elsewhere.
			if _, err := e.questions.GetByID(ctx, a.QuestionID); err != nil {
				return nil, 0, err
			}
			return nil, 0, apperr.Errorf(apperr.KindValidation, "question %d does not belong to quiz %d", a.QuestionID, quizID)
		}

		o, ok := optionByID[a.OptionID]
		if !ok {
			if _, err := e.options.GetByID(ctx, a.OptionID); err != nil {
				return nil, 0, err
			}
			return nil, 0, apperr.Errorf(apperr.KindValidation, "option %d does not belong to question %d", a.OptionID, q.ID)
		}
		if o.QuestionID != q.ID {
			return nil, 0, apperr.Errorf(apperr.KindValidation, "option %d does not belong to question %d", o.ID, q.ID)
		}

		optionID := o.ID
		responses = append(responses, &entities.Response{
			QuestionID: q.ID,
			OptionID:   &optionID,
			IsCorrect:  o.IsCorrect,
		})
		if o.IsCorrect {
			correct++
		}
	}

	return responses, correct, nil
}
