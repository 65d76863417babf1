package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
)

// OptionInput describes an option of a new or replaced question.
type OptionInput struct {
	Text      string
	IsCorrect bool
}

// QuestionInput describes a question with its options.
type QuestionInput struct {
	Text    string
	Options []OptionInput
}

// QuizInput describes the attributes of a quiz and, on creation, its questions.
type QuizInput struct {
	Title            string
	Description      string
	Difficulty       string
	Category         string
	Icon             string
	Color            string
	TimeLimitSeconds int
	TopicID          *int64
	Questions        []QuestionInput
}

// QuizDetails is a quiz together with its questions and their options.
type QuizDetails struct {
	Quiz      *entities.Quiz
	Questions []*entities.Question
}

// QuizService handles quiz authoring and browsing.
type QuizService struct {
	store  repository.Store
	tr     repository.Transactor
	guard  OwnershipGuard
	logger *zap.Logger
}

func NewQuizService(store repository.Store, tr repository.Transactor, logger *zap.Logger) *QuizService {
	return &QuizService{store: store, tr: tr, logger: logger}
}

// CreateQuiz stores a complete quiz for a professor.
func (s *QuizService) CreateQuiz(ctx context.Context, professorID int64, in QuizInput) (*QuizDetails, error) {
	if err := validateQuizInput(in); err != nil {
		return nil, err
	}
	for i, q := range in.Questions {
		if err := validateQuestionInput(q); err != nil {
			return nil, apperr.Errorf(apperr.KindValidation, "question %d: %s", i+1, apperr.Message(err))
		}
	}

	var details *QuizDetails
	err := s.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		professor, err := st.Users().GetByID(ctx, professorID)
		if err != nil {
			return err
		}
		if !professor.IsProfessor() {
			return apperr.Errorf(apperr.KindForbidden, "user %d is not a professor", professorID)
		}
		if in.TopicID != nil {
			if _, err := st.Topics().GetByID(ctx, *in.TopicID); err != nil {
				return err
			}
		}

		quiz := &entities.Quiz{ProfessorID: &professor.ID, CreatedAt: time.Now().UTC()}
		applyQuizInput(quiz, in)
		if quiz.ID, err = st.Quizzes().Create(ctx, quiz); err != nil {
			return err
		}

		details = &QuizDetails{Quiz: quiz}
		for i, qin := range in.Questions {
			q, err := createQuestion(ctx, st, quiz.ID, i, qin)
			if err != nil {
				return err
			}
			details.Questions = append(details.Questions, q)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quiz created",
		zap.Int64("quiz_id", details.Quiz.ID),
		zap.Int64("professor_id", professorID),
		zap.Int("questions", len(details.Questions)),
	)
	return details, nil
}

// UpdateQuiz replaces the quiz attributes. Questions are left untouched.
func (s *QuizService) UpdateQuiz(ctx context.Context, quizID, professorID int64, in QuizInput) (*entities.Quiz, error) {
	if err := validateQuizInput(in); err != nil {
		return nil, err
	}

	var quiz *entities.Quiz
	err := s.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		var err error
		if quiz, err = s.authorize(ctx, st, quizID, professorID); err != nil {
			return err
		}
		if in.TopicID != nil {
			if _, err := st.Topics().GetByID(ctx, *in.TopicID); err != nil {
				return err
			}
		}

		applyQuizInput(quiz, in)
		return st.Quizzes().Update(ctx, quiz)
	})
	if err != nil {
		return nil, err
	}

	return quiz, nil
}

// AddQuestion appends a question to a quiz owned by the professor.
func (s *QuizService) AddQuestion(ctx context.Context, quizID, professorID int64, in QuestionInput) (*entities.Question, error) {
	if err := validateQuestionInput(in); err != nil {
		return nil, err
	}

	var question *entities.Question
	err := s.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		if _, err := s.authorize(ctx, st, quizID, professorID); err != nil {
			return err
		}
		n, err := st.Questions().CountByQuiz(ctx, quizID)
		if err != nil {
			return err
		}
		question, err = createQuestion(ctx, st, quizID, n, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	return question, nil
}

// GetQuiz returns the quiz with its questions and options.
func (s *QuizService) GetQuiz(ctx context.Context, quizID int64) (*QuizDetails, error) {
	quiz, err := s.store.Quizzes().GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return s.loadDetails(ctx, quiz)
}

// GetProfessorQuiz is GetQuiz restricted to the owning professor.
func (s *QuizService) GetProfessorQuiz(ctx context.Context, quizID, professorID int64) (*QuizDetails, error) {
	quiz, err := s.authorize(ctx, s.store, quizID, professorID)
	if err != nil {
		return nil, err
	}
	return s.loadDetails(ctx, quiz)
}

func (s *QuizService) ListQuizzes(ctx context.Context, f repository.QuizFilter) ([]*entities.Quiz, error) {
	return s.store.Quizzes().List(ctx, f)
}

func (s *QuizService) ListProfessorQuizzes(ctx context.Context, professorID int64) ([]*entities.Quiz, error) {
	if _, err := s.store.Users().GetByID(ctx, professorID); err != nil {
		return nil, err
	}
	return s.store.Quizzes().List(ctx, repository.QuizFilter{ProfessorID: professorID})
}

// ListQuestions returns every question with its options.
func (s *QuizService) ListQuestions(ctx context.Context) ([]*entities.Question, error) {
	questions, err := s.store.Questions().List(ctx)
	if err != nil {
		return nil, err
	}
	options, err := s.store.Options().List(ctx)
	if err != nil {
		return nil, err
	}
	attachOptions(questions, options)
	return questions, nil
}

func (s *QuizService) GetQuestion(ctx context.Context, questionID int64) (*entities.Question, error) {
	q, err := s.store.Questions().GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q.Options, err = s.store.Options().ListByQuestion(ctx, questionID); err != nil {
		return nil, err
	}
	return q, nil
}

// ListQuizQuestions fails with NotFound when the quiz does not exist.
func (s *QuizService) ListQuizQuestions(ctx context.Context, quizID int64) ([]*entities.Question, error) {
	quiz, err := s.store.Quizzes().GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	details, err := s.loadDetails(ctx, quiz)
	if err != nil {
		return nil, err
	}
	return details.Questions, nil
}

func (s *QuizService) authorize(ctx context.Context, st repository.Store, quizID, professorID int64) (*entities.Quiz, error) {
	if _, err := st.Users().GetByID(ctx, professorID); err != nil {
		return nil, err
	}
	quiz, err := st.Quizzes().GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(quiz, professorID); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) loadDetails(ctx context.Context, quiz *entities.Quiz) (*QuizDetails, error) {
	questions, err := s.store.Questions().ListByQuiz(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}
	options, err := s.store.Options().ListByQuiz(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}
	attachOptions(questions, options)

	return &QuizDetails{Quiz: quiz, Questions: questions}, nil
}

func attachOptions(questions []*entities.Question, options []*entities.Option) {
	byQuestion := make(map[int64][]*entities.Option, len(questions))
	for _, o := range options {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
	}
	for _, q := range questions {
		q.Options = byQuestion[q.ID]
	}
}

func createQuestion(ctx context.Context, st repository.Store, quizID int64, position int, in QuestionInput) (*entities.Question, error) {
	q := &entities.Question{QuizID: quizID, Text: strings.TrimSpace(in.Text), Position: position}

	id, err := st.Questions().Create(ctx, q)
	if err != nil {
		return nil, err
	}
	q.ID = id

	for _, oin := range in.Options {
		q.Options = append(q.Options, &entities.Option{QuestionID: id, Text: strings.TrimSpace(oin.Text), IsCorrect: oin.IsCorrect})
	}
	if err := st.Options().CreateBatch(ctx, q.Options); err != nil {
		return nil, err
	}

	return q, nil
}

func applyQuizInput(q *entities.Quiz, in QuizInput) {
	q.Title = strings.TrimSpace(in.Title)
	q.Description = in.Description
	q.Difficulty = in.Difficulty
	q.Category = in.Category
	q.Icon = in.Icon
	q.Color = in.Color
	q.TimeLimitSeconds = in.TimeLimitSeconds
	q.TopicID = in.TopicID
	q.ApplyDefaults()
}

func validateQuizInput(in QuizInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.Validation("quiz title is required")
	}
	if in.TimeLimitSeconds < 0 {
		return apperr.Validation("time limit must not be negative")
	}
	return nil
}

// validateQuestionInput does not require exactly one correct option.
func validateQuestionInput(in QuestionInput) error {
	if strings.TrimSpace(in.Text) == "" {
		return apperr.Validation("question text is required")
	}
	if len(in.Options) == 0 {
		return apperr.Validation("question needs at least one option")
	}
	for i, o := range in.Options {
		if strings.TrimSpace(o.Text) == "" {
			return apperr.Errorf(apperr.KindValidation, "option %d has no text", i+1)
		}
	}
	return nil
}
