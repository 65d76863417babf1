package http

import "net/http"

func (h *Handler) quizStatistics(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r, "quizId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	stats, err := h.statistics.Quiz(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuizStatsResponse(stats))
}

func (h *Handler) questionStatistics(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathID(r, "questionId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	stats, err := h.statistics.Question(r.Context(), questionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuestionStatsResponse(stats))
}

func (h *Handler) systemStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statistics.System(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSystemStatsResponse(stats))
}
