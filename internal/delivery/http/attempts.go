package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mylearnapp/quiz-platform/internal/service"
)

func (h *Handler) startAttempt(w http.ResponseWriter, r *http.Request) {
	clerkID, err := requiredQuery(r, "clerkId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	quizID, err := queryID(r, "quizId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	a, err := h.attempts.StartByClerkID(r.Context(), clerkID, quizID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, startResponse{
		AttemptID:      a.ID,
		StartTime:      a.StartTime,
		TotalQuestions: a.TotalQuestions,
	})
}

func (h *Handler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	attemptID, err := pathID(r, "attemptId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	answers, err := decodeAnswers(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	a, err := h.attempts.Submit(r.Context(), attemptID, answers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		AttemptID:        a.ID,
		Status:           string(a.Status),
		Score:            a.Score,
		CorrectAnswers:   a.Score,
		TotalQuestions:   a.TotalQuestions,
		TimeTakenSeconds: a.TimeTakenSeconds,
	})
}

func (h *Handler) expireAttempt(w http.ResponseWriter, r *http.Request) {
	attemptID, err := pathID(r, "attemptId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	a, err := h.attempts.AutoExpire(r.Context(), attemptID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttemptResponse(a))
}

func (h *Handler) timeExceeded(w http.ResponseWriter, r *http.Request) {
	attemptID, err := pathID(r, "attemptId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	exceeded, err := h.attempts.HasTimeLimitExceeded(r.Context(), attemptID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"timeLimitExceeded": exceeded})
}

func (h *Handler) getAttempt(w http.ResponseWriter, r *http.Request) {
	attemptID, err := pathID(r, "attemptId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	a, err := h.attempts.GetAttempt(r.Context(), attemptID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttemptResponse(a))
}

func (h *Handler) deleteAttempt(w http.ResponseWriter, r *http.Request) {
	attemptID, err := pathID(r, "attemptId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.attempts.DeleteAttempt(r.Context(), attemptID); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Quiz attempt deleted successfully"})
}

// The {user} segment is a clerk id on the user listings and a numeric user
// id on the per-quiz listing.
func (h *Handler) listUserAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.attempts.ListUserAttempts(r.Context(), chi.URLParam(r, "user"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttemptResponses(attempts))
}

func (h *Handler) listRecentUserAttempts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", service.DefaultRecentAttempts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	attempts, err := h.attempts.ListRecentUserAttempts(r.Context(), chi.URLParam(r, "user"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttemptResponses(attempts))
}

func (h *Handler) listUserQuizAttempts(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	quizID, err := pathID(r, "quizId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	attempts, err := h.attempts.ListUserQuizAttempts(r.Context(), userID, quizID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttemptResponses(attempts))
}

func (h *Handler) listQuizAttempts(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r, "quizId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	attempts, err := h.attempts.ListQuizAttempts(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttemptResponses(attempts))
}

func (h *Handler) listResponses(w http.ResponseWriter, r *http.Request) {
	attemptID, err := pathID(r, "attemptId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	responses, err := h.attempts.ListResponses(r.Context(), attemptID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]responseResponse, 0, len(responses))
	for _, resp := range responses {
		out = append(out, toResponseResponse(resp))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getResponseForQuestion(w http.ResponseWriter, r *http.Request) {
	attemptID, err := pathID(r, "attemptId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	questionID, err := pathID(r, "questionId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.attempts.GetResponseForQuestion(r.Context(), attemptID, questionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseResponse(resp))
}
