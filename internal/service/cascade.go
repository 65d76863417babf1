package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
)

// CascadeReport counts the rows removed by a cascading delete.
type CascadeReport struct {
	Responses int64
	Attempts  int64
	Options   int64
	Questions int64
}

// CascadeDeleter removes quizzes and questions together with every row that
// references them. Dependents are always removed before the rows they point
// at, so the store's foreign keys are never violated. Each operation runs in
// a single transaction.
type CascadeDeleter struct {
	tr     repository.Transactor
	guard  OwnershipGuard
	logger *zap.Logger
}

func NewCascadeDeleter(tr repository.Transactor, logger *zap.Logger) *CascadeDeleter {
	return &CascadeDeleter{tr: tr, logger: logger}
}

// DeleteQuiz removes the quiz without an ownership check.
func (d *CascadeDeleter) DeleteQuiz(ctx context.Context, quizID int64) (*CascadeReport, error) {
	var report *CascadeReport
	err := d.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		if _, err := st.Quizzes().GetByID(ctx, quizID); err != nil {
			return err
		}

		var err error
		report, err = deleteQuizTree(ctx, st, quizID)
		return err
	})
	if err != nil {
		return nil, err
	}

	d.logReport("quiz deleted", quizID, report)
	return report, nil
}

// DeleteProfessorQuiz removes the quiz after checking that professorID owns it.
func (d *CascadeDeleter) DeleteProfessorQuiz(ctx context.Context, quizID, professorID int64) (*CascadeReport, error) {
	var report *CascadeReport
	err := d.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		if _, err := st.Users().GetByID(ctx, professorID); err != nil {
			return err
		}
		quiz, err := st.Quizzes().GetByID(ctx, quizID)
		if err != nil {
			return err
		}
		if err := d.guard.Authorize(quiz, professorID); err != nil {
			return err
		}

		report, err = deleteQuizTree(ctx, st, quizID)
		return err
	})
	if err != nil {
		return nil, err
	}

	d.logReport("quiz deleted by professor", quizID, report)
	return report, nil
}

// DeleteQuestion removes a question, its options and every response that
// references either, after checking quiz ownership.
func (d *CascadeDeleter) DeleteQuestion(ctx context.Context, questionID, professorID int64) error {
	var responses, options int64
	err := d.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		question, err := d.authorizeQuestion(ctx, st, questionID, professorID)
		if err != nil {
			return err
		}

		if responses, err = st.Responses().DeleteByQuestion(ctx, question.ID); err != nil {
			return err
		}
		if options, err = st.Options().DeleteByQuestion(ctx, question.ID); err != nil {
			return err
		}
		return st.Questions().Delete(ctx, question.ID)
	})
	if err != nil {
		return err
	}

	d.logger.Info("question deleted",
		zap.Int64("question_id", questionID),
		zap.Int64("professor_id", professorID),
		zap.Int64("responses", responses),
		zap.Int64("options", options),
	)
	return nil
}

// UpdateQuestion changes the question text and, when newOptions is not empty,
// replaces its options. Responses that chose a replaced option are removed
// first. An empty text keeps the current text.
func (d *CascadeDeleter) UpdateQuestion(
	ctx context.Context,
	questionID, professorID int64,
	text string,
	newOptions []*entities.Option,
) (*entities.Question, error) {
	for i, o := range newOptions {
		if strings.TrimSpace(o.Text) == "" {
			return nil, apperr.Errorf(apperr.KindValidation, "option %d has no text", i+1)
		}
	}

	var question *entities.Question
	err := d.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		var err error
		question, err = d.authorizeQuestion(ctx, st, questionID, professorID)
		if err != nil {
			return err
		}

		if text = strings.TrimSpace(text); text != "" && text != question.Text {
			if err := st.Questions().UpdateText(ctx, question.ID, text); err != nil {
				return err
			}
			question.Text = text
		}

		if len(newOptions) > 0 {
			removed, err := st.Responses().DeleteByQuestionOptions(ctx, question.ID)
			if err != nil {
				return err
			}
			if _, err := st.Options().DeleteByQuestion(ctx, question.ID); err != nil {
				return err
			}
			for _, o := range newOptions {
				o.ID = 0
				o.QuestionID = question.ID
			}
			if err := st.Options().CreateBatch(ctx, newOptions); err != nil {
				return err
			}
			if removed > 0 {
				d.logger.Info("responses removed with replaced options",
					zap.Int64("question_id", question.ID),
					zap.Int64("responses", removed),
				)
			}
		}

		question.Options, err = st.Options().ListByQuestion(ctx, question.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if n := question.CorrectCount(); n != 1 {
		d.logger.Warn("question does not have exactly one correct option",
			zap.Int64("question_id", question.ID),
			zap.Int("correct_options", n),
		)
	}

	return question, nil
}

func (d *CascadeDeleter) authorizeQuestion(
	ctx context.Context,
	st repository.Store,
	questionID, professorID int64,
) (*entities.Question, error) {
	if _, err := st.Users().GetByID(ctx, professorID); err != nil {
		return nil, err
	}
	question, err := st.Questions().GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	quiz, err := st.Quizzes().GetByID(ctx, question.QuizID)
	if err != nil {
		return nil, err
	}
	if err := d.guard.Authorize(quiz, professorID); err != nil {
		return nil, err
	}
	return question, nil
}

func (d *CascadeDeleter) logReport(msg string, quizID int64, r *CascadeReport) {
	d.logger.Info(msg,
		zap.Int64("quiz_id", quizID),
		zap.Int64("responses", r.Responses),
		zap.Int64("attempts", r.Attempts),
		zap.Int64("options", r.Options),
		zap.Int64("questions", r.Questions),
	)
}

// deleteQuizTree removes, in order: responses of the quiz's attempts, the
// attempts, remaining responses that reference the quiz's questions or
// options, the options, the questions and finally the quiz.
func deleteQuizTree(ctx context.Context, st repository.Store, quizID int64) (*CascadeReport, error) {
	var (
		r   CascadeReport
		n   int64
		err error
	)

	if n, err = st.Responses().DeleteByQuizAttempts(ctx, quizID); err != nil {
		return nil, err
	}
	r.Responses += n

	if r.Attempts, err = st.Attempts().DeleteByQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	if n, err = st.Responses().DeleteByQuizQuestions(ctx, quizID); err != nil {
		return nil, err
	}
	r.Responses += n

	if r.Options, err = st.Options().DeleteByQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	if r.Questions, err = st.Questions().DeleteByQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	if err := st.Quizzes().Delete(ctx, quizID); err != nil {
		return nil, err
	}

	return &r, nil
}
