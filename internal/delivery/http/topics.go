package http

import (
	"net/http"

	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
)

func (h *Handler) listTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topics.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTopicResponses(topics))
}

func (h *Handler) searchTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topics.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTopicResponses(topics))
}

func (h *Handler) createTopic(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	t, err := h.topics.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTopicResponse(t))
}

func (h *Handler) getTopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "topicId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	t, err := h.topics.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTopicResponse(t))
}

func (h *Handler) updateTopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "topicId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req topicRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	t, err := h.topics.Update(r.Context(), id, req.Name, req.Description)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTopicResponse(t))
}

func (h *Handler) deleteTopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "topicId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.topics.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Topic deleted successfully"})
}

func toTopicResponses(topics []*entities.Topic) []topicResponse {
	out := make([]topicResponse, 0, len(topics))
	for _, t := range topics {
		out = append(out, toTopicResponse(t))
	}
	return out
}
