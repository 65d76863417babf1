package http

import (
	"time"

	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
	"github.com/mylearnapp/quiz-platform/internal/service"
)

type optionRequest struct {
	Text      string `json:"text" validate:"required,max=500"`
	IsCorrect bool   `json:"isCorrect"`
}

type questionRequest struct {
	Text    string          `json:"text" validate:"required,max=1000"`
	Options []optionRequest `json:"options" validate:"required,min=1,dive"`
}

// quizRequest is both the authoring body and the shape of generated drafts.
type quizRequest struct {
	Title       string            `json:"title" validate:"required,max=200"`
	Description string            `json:"description"`
	Difficulty  string            `json:"difficulty" validate:"max=50"`
	Category    string            `json:"category" validate:"max=100"`
	Icon        string            `json:"icon" validate:"max=100"`
	Color       string            `json:"color" validate:"max=100"`
	TimeLimit   *int              `json:"timeLimit,omitempty"`
	TopicID     *int64            `json:"topicId,omitempty" validate:"omitempty,gt=0"`
	Questions   []questionRequest `json:"questions,omitempty" validate:"dive"`
}

// toInput converts the body. A missing time limit means an untimed quiz;
// negative limits are rejected by the service.
func (q quizRequest) toInput() service.QuizInput {
	in := service.QuizInput{
		Title:       q.Title,
		Description: q.Description,
		Difficulty:  q.Difficulty,
		Category:    q.Category,
		Icon:        q.Icon,
		Color:       q.Color,
		TopicID:     q.TopicID,
	}
	if q.TimeLimit != nil {
		in.TimeLimitSeconds = *q.TimeLimit
	}
	for _, qr := range q.Questions {
		in.Questions = append(in.Questions, qr.toInput())
	}
	return in
}

func (q questionRequest) toInput() service.QuestionInput {
	in := service.QuestionInput{Text: q.Text}
	for _, o := range q.Options {
		in.Options = append(in.Options, service.OptionInput{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return in
}

func toDraftResponse(in *service.QuizInput) quizRequest {
	limit := in.TimeLimitSeconds
	out := quizRequest{
		Title:       in.Title,
		Description: in.Description,
		Difficulty:  in.Difficulty,
		Category:    in.Category,
		Icon:        in.Icon,
		Color:       in.Color,
		TimeLimit:   &limit,
	}
	for _, q := range in.Questions {
		qr := questionRequest{Text: q.Text}
		for _, o := range q.Options {
			qr.Options = append(qr.Options, optionRequest{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		out.Questions = append(out.Questions, qr)
	}
	return out
}

// updateQuestionRequest keeps the current text when Text is empty and the
// current options when Options is empty.
type updateQuestionRequest struct {
	Text    string          `json:"text" validate:"max=1000"`
	Options []optionRequest `json:"options" validate:"dive"`
}

func (u updateQuestionRequest) options() []*entities.Option {
	out := make([]*entities.Option, 0, len(u.Options))
	for _, o := range u.Options {
		out = append(out, &entities.Option{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return out
}

type generateRequest struct {
	SourceType   string `json:"sourceType" validate:"max=50"`
	Content      string `json:"content" validate:"required"`
	NumQuestions int    `json:"numQuestions" validate:"required,min=1,max=50"`
	Difficulty   string `json:"difficulty" validate:"max=50"`
	Category     string `json:"category" validate:"max=100"`
}

type roleUpdateRequest struct {
	ClerkID string `json:"clerkId" validate:"required"`
	Role    string `json:"role" validate:"required"`
}

type topicRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

// clerkEvent is the identity provider webhook payload.
type clerkEvent struct {
	Type string    `json:"type"`
	Data clerkUser `json:"data"`
}

type clerkUser struct {
	ID             string `json:"id" validate:"required"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	UnsafeMetadata struct {
		Role string `json:"role"`
	} `json:"unsafe_metadata"`
}

func (u clerkUser) profile() service.Profile {
	p := service.Profile{
		ClerkID:   u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.UnsafeMetadata.Role,
	}
	if len(u.EmailAddresses) > 0 {
		p.Email = u.EmailAddresses[0].EmailAddress
	}
	return p
}

type startResponse struct {
	AttemptID      int64     `json:"attemptId"`
	StartTime      time.Time `json:"startTime"`
	TotalQuestions int       `json:"totalQuestions"`
}

type submitResponse struct {
	AttemptID        int64  `json:"attemptId"`
	Status           string `json:"status"`
	Score            int    `json:"score"`
	CorrectAnswers   int    `json:"correctAnswers"`
	TotalQuestions   int    `json:"totalQuestions"`
	TimeTakenSeconds *int64 `json:"timeTakenSeconds"`
}

type attemptResponse struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"userId"`
	QuizID           int64      `json:"quizId"`
	StartTime        time.Time  `json:"startTime"`
	EndTime          *time.Time `json:"endTime"`
	Score            int        `json:"score"`
	TotalQuestions   int        `json:"totalQuestions"`
	TimeTakenSeconds *int64     `json:"timeTakenSeconds"`
	Status           string     `json:"status"`
}

func toAttemptResponse(a *entities.QuizAttempt) attemptResponse {
	return attemptResponse{
		ID:               a.ID,
		UserID:           a.UserID,
		QuizID:           a.QuizID,
		StartTime:        a.StartTime,
		EndTime:          a.EndTime,
		Score:            a.Score,
		TotalQuestions:   a.TotalQuestions,
		TimeTakenSeconds: a.TimeTakenSeconds,
		Status:           string(a.Status),
	}
}

func toAttemptResponses(attempts []*entities.QuizAttempt) []attemptResponse {
	out := make([]attemptResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, toAttemptResponse(a))
	}
	return out
}

type responseResponse struct {
	ID         int64  `json:"id"`
	AttemptID  int64  `json:"attemptId"`
	QuestionID int64  `json:"questionId"`
	OptionID   *int64 `json:"optionId"`
	IsCorrect  bool   `json:"isCorrect"`
}

func toResponseResponse(r *entities.Response) responseResponse {
	return responseResponse{
		ID:         r.ID,
		AttemptID:  r.AttemptID,
		QuestionID: r.QuestionID,
		OptionID:   r.OptionID,
		IsCorrect:  r.IsCorrect,
	}
}

type optionResponse struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"isCorrect,omitempty"`
}

type questionResponse struct {
	ID       int64            `json:"id"`
	QuizID   int64            `json:"quizId"`
	Text     string           `json:"text"`
	Position int              `json:"position"`
	Options  []optionResponse `json:"options"`
}

type quizResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Difficulty  string             `json:"difficulty"`
	Category    string             `json:"category"`
	Icon        string             `json:"icon"`
	Color       string             `json:"color"`
	TimeLimit   int                `json:"timeLimit"`
	TopicID     *int64             `json:"topicId"`
	ProfessorID *int64             `json:"professorId"`
	CreatedAt   time.Time          `json:"createdAt"`
	Questions   []questionResponse `json:"questions,omitempty"`
}

func toQuizResponse(q *entities.Quiz) quizResponse {
	return quizResponse{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Difficulty:  q.Difficulty,
		Category:    q.Category,
		Icon:        q.Icon,
		Color:       q.Color,
		TimeLimit:   q.TimeLimitSeconds,
		TopicID:     q.TopicID,
		ProfessorID: q.ProfessorID,
		CreatedAt:   q.CreatedAt,
	}
}

func toQuizResponses(quizzes []*entities.Quiz) []quizResponse {
	out := make([]quizResponse, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, toQuizResponse(q))
	}
	return out
}

// toQuizDetailsResponse includes correct answers only when withAnswers is set.
func toQuizDetailsResponse(d *service.QuizDetails, withAnswers bool) quizResponse {
	out := toQuizResponse(d.Quiz)
	out.Questions = make([]questionResponse, 0, len(d.Questions))
	for _, q := range d.Questions {
		out.Questions = append(out.Questions, toQuestionResponse(q, withAnswers))
	}
	return out
}

func toQuestionResponse(q *entities.Question, withAnswers bool) questionResponse {
	qr := questionResponse{ID: q.ID, QuizID: q.QuizID, Text: q.Text, Position: q.Position, Options: make([]optionResponse, 0, len(q.Options))}
	for _, o := range q.Options {
		item := optionResponse{ID: o.ID, Text: o.Text}
		if withAnswers {
			correct := o.IsCorrect
			item.IsCorrect = &correct
		}
		qr.Options = append(qr.Options, item)
	}
	return qr
}

func toQuestionResponses(questions []*entities.Question) []questionResponse {
	out := make([]questionResponse, 0, len(questions))
	for _, q := range questions {
		out = append(out, toQuestionResponse(q, false))
	}
	return out
}

type userResponse struct {
	ID        int64     `json:"id"`
	ClerkID   string    `json:"clerkId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *entities.User) userResponse {
	return userResponse{
		ID:        u.ID,
		ClerkID:   u.ClerkID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type checkRoleResponse struct {
	IsProfessor bool   `json:"isProfessor"`
	IsStudent   bool   `json:"isStudent"`
	Role        string `json:"role"`
}

type topicResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toTopicResponse(t *entities.Topic) topicResponse {
	return topicResponse{ID: t.ID, Name: t.Name, Description: t.Description}
}

type cascadeResponse struct {
	Message   string `json:"message"`
	Responses int64  `json:"deletedResponses"`
	Attempts  int64  `json:"deletedAttempts"`
	Options   int64  `json:"deletedOptions"`
	Questions int64  `json:"deletedQuestions"`
}

func toCascadeResponse(msg string, r *service.CascadeReport) cascadeResponse {
	return cascadeResponse{
		Message:   msg,
		Responses: r.Responses,
		Attempts:  r.Attempts,
		Options:   r.Options,
		Questions: r.Questions,
	}
}

type quizStatsResponse struct {
	QuizID              int64                  `json:"quizId"`
	AttemptCount        int64                  `json:"attemptCount"`
	AverageScore        float64                `json:"averageScore"`
	AverageTimeSeconds  float64                `json:"averageTimeSeconds"`
	MostMissedQuestions []questionMissResponse `json:"mostMissedQuestions"`
}

type questionMissResponse struct {
	QuestionID int64  `json:"questionId"`
	Text       string `json:"text"`
	Misses     int64  `json:"misses"`
}

func toQuizStatsResponse(s *service.QuizStatistics) quizStatsResponse {
	out := quizStatsResponse{
		QuizID:              s.QuizID,
		AttemptCount:        s.AttemptCount,
		AverageScore:        s.AverageScore,
		AverageTimeSeconds:  s.AverageTimeSecs,
		MostMissedQuestions: make([]questionMissResponse, 0, len(s.MostMissed)),
	}
	for _, m := range s.MostMissed {
		out.MostMissedQuestions = append(out.MostMissedQuestions, questionMissResponse(m))
	}
	return out
}

type questionStatsResponse struct {
	QuestionID         int64                 `json:"questionId"`
	TotalResponses     int64                 `json:"totalResponses"`
	CorrectResponses   int64                 `json:"correctResponses"`
	CorrectPercentage  float64               `json:"correctPercentage"`
	OptionDistribution []optionCountResponse `json:"optionDistribution"`
}

type optionCountResponse struct {
	OptionID  int64  `json:"optionId"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
	Count     int64  `json:"count"`
}

func toQuestionStatsResponse(s *service.QuestionStatistics) questionStatsResponse {
	out := questionStatsResponse{
		QuestionID:         s.QuestionID,
		TotalResponses:     s.TotalResponses,
		CorrectResponses:   s.CorrectCount,
		CorrectPercentage:  s.CorrectPercentage(),
		OptionDistribution: make([]optionCountResponse, 0, len(s.Options)),
	}
	for _, o := range s.Options {
		out.OptionDistribution = append(out.OptionDistribution, optionCountResponse(o))
	}
	return out
}

type systemStatsResponse struct {
	TotalQuizzes   int64 `json:"totalQuizzes"`
	TotalAttempts  int64 `json:"totalAttempts"`
	TotalUsers     int64 `json:"totalUsers"`
	RecentAttempts int64 `json:"recentAttempts"`
}

func toSystemStatsResponse(s *repository.SystemStats) systemStatsResponse {
	return systemStatsResponse(*s)
}
