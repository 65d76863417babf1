package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
)

// DefaultDraftCategory is used when a generation request names no category.
const DefaultDraftCategory = "Programmation"

const maxDraftQuestions = 50

// GenerationRequest describes the quiz a professor wants drafted.
type GenerationRequest struct {
	SourceType   string // e.g. "text" or "topic"
	Content      string
	NumQuestions int
	Difficulty   string
	Category     string
}

// QuizGenerator produces draft quiz content from a source text.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, req GenerationRequest) (*entities.QuizDraft, error)
}

// GenerationService drafts quizzes for professors. Drafts are returned to
// the caller and never stored.
type GenerationService struct {
	store     repository.Store
	generator QuizGenerator
	logger    *zap.Logger
}

func NewGenerationService(store repository.Store, generator QuizGenerator, logger *zap.Logger) *GenerationService {
	return &GenerationService{store: store, generator: generator, logger: logger}
}

// GenerateDraft checks that clerkID belongs to a professor and asks the
// generator for a draft. The draft carries the default presentation
// attributes and time limit.
func (s *GenerationService) GenerateDraft(ctx context.Context, clerkID string, req GenerationRequest) (*QuizInput, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperr.Validation("content is required")
	}
	if req.NumQuestions <= 0 || req.NumQuestions > maxDraftQuestions {
		return nil, apperr.Errorf(apperr.KindValidation, "number of questions must be between 1 and %d", maxDraftQuestions)
	}
	if req.Category == "" {
		req.Category = DefaultDraftCategory
	}

	professor, err := s.store.Users().GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if !professor.IsProfessor() {
		return nil, apperr.Errorf(apperr.KindForbidden, "user %s is not a professor", clerkID)
	}

	draft, err := s.generator.GenerateQuiz(ctx, req)
	if err != nil {
		s.logger.Error("quiz generation failed",
			zap.String("clerk_id", clerkID),
			zap.Error(err),
		)
		return nil, err
	}

	in := &QuizInput{
		Title:            draft.Title,
		Description:      draft.Description,
		Difficulty:       req.Difficulty,
		Category:         req.Category,
		Icon:             entities.DefaultQuizIcon,
		Color:            entities.DefaultQuizColor,
		TimeLimitSeconds: entities.DefaultTimeLimitSecs,
	}
	for _, q := range draft.Questions {
		qin := QuestionInput{Text: q.Text}
		for _, o := range q.Options {
			qin.Options = append(qin.Options, OptionInput{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		in.Questions = append(in.Questions, qin)
	}

	s.logger.Info("quiz draft generated",
		zap.String("clerk_id", clerkID),
		zap.Int("questions", len(in.Questions)),
	)
	return in, nil
}
