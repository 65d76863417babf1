package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
	"github.com/mylearnapp/quiz-platform/internal/service"
)

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.QuizFilter{
		TopicName:  strings.TrimSpace(q.Get("topic")),
		Difficulty: strings.TrimSpace(q.Get("difficulty")),
		Category:   strings.TrimSpace(q.Get("category")),
	}
	if q.Get("topicId") != "" {
		id, err := queryID(r, "topicId")
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		f.TopicID = id
	}

	quizzes, err := h.quizzes.ListQuizzes(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuizResponses(quizzes))
}

// getQuiz returns the quiz as students see it, without correct answers.
func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r, "quizId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	details, err := h.quizzes.GetQuiz(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuizDetailsResponse(details, false))
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r, "quizId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	report, err := h.cascade.DeleteQuiz(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCascadeResponse("Quiz deleted successfully", report))
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.quizzes.ListQuestions(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuestionResponses(questions))
}

func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathID(r, "questionId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q, err := h.quizzes.GetQuestion(r.Context(), questionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuestionResponse(q, false))
}

func (h *Handler) listQuizQuestions(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r, "quizId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	questions, err := h.quizzes.ListQuizQuestions(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuestionResponses(questions))
}

func (h *Handler) generateQuiz(w http.ResponseWriter, r *http.Request) {
	clerkID, err := requiredQuery(r, "professorId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req generateRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	draft, err := h.generation.GenerateDraft(r.Context(), clerkID, service.GenerationRequest{
		SourceType:   req.SourceType,
		Content:      req.Content,
		NumQuestions: req.NumQuestions,
		Difficulty:   req.Difficulty,
		Category:     req.Category,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDraftResponse(draft))
}

// professor resolves the {clerkId} path segment to a user.
func (h *Handler) professor(r *http.Request) (*entities.User, error) {
	clerkID := strings.TrimSpace(chi.URLParam(r, "clerkId"))
	if clerkID == "" {
		return nil, apperr.Validation("clerkId is required")
	}
	return h.users.GetByClerkID(r.Context(), clerkID)
}

func (h *Handler) listProfessorQuizzes(w http.ResponseWriter, r *http.Request) {
	prof, err := h.professor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	quizzes, err := h.quizzes.ListProfessorQuizzes(r.Context(), prof.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuizResponses(quizzes))
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	prof, err := h.professor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req quizRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	details, err := h.quizzes.CreateQuiz(r.Context(), prof.ID, req.toInput())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toQuizDetailsResponse(details, true))
}

func (h *Handler) getProfessorQuiz(w http.ResponseWriter, r *http.Request) {
	prof, err := h.professor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	quizID, err := pathID(r, "quizId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	details, err := h.quizzes.GetProfessorQuiz(r.Context(), quizID, prof.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuizDetailsResponse(details, true))
}

func (h *Handler) updateQuiz(w http.ResponseWriter, r *http.Request) {
	prof, err := h.professor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	quizID, err := pathID(r, "quizId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req quizRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	quiz, err := h.quizzes.UpdateQuiz(r.Context(), quizID, prof.ID, req.toInput())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuizResponse(quiz))
}

func (h *Handler) deleteProfessorQuiz(w http.ResponseWriter, r *http.Request) {
	prof, err := h.professor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	quizID, err := pathID(r, "quizId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	report, err := h.cascade.DeleteProfessorQuiz(r.Context(), quizID, prof.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCascadeResponse("Quiz deleted successfully", report))
}

func (h *Handler) addQuestion(w http.ResponseWriter, r *http.Request) {
	prof, err := h.professor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	quizID, err := pathID(r, "quizId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req questionRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	q, err := h.quizzes.AddQuestion(r.Context(), quizID, prof.ID, req.toInput())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toQuestionResponse(q, true))
}

func (h *Handler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	prof, err := h.professor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	questionID, err := pathID(r, "questionId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req updateQuestionRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	q, err := h.cascade.UpdateQuestion(r.Context(), questionID, prof.ID, req.Text, req.options())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuestionResponse(q, true))
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	prof, err := h.professor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	questionID, err := pathID(r, "questionId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.cascade.DeleteQuestion(r.Context(), questionID, prof.ID); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Question deleted successfully"})
}
