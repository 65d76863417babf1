package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
)

func (h *Handler) userCreated(w http.ResponseWriter, r *http.Request) {
	var ev clerkEvent
	if err := h.decodeJSON(w, r, &ev); err != nil {
		h.writeError(w, r, err)
		return
	}

	u, created, err := h.users.Provision(r.Context(), ev.Data.profile())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toUserResponse(u))
}

func (h *Handler) userDeleted(w http.ResponseWriter, r *http.Request) {
	var ev clerkEvent
	if err := h.decodeJSON(w, r, &ev); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.users.Delete(r.Context(), ev.Data.ID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("user deleted by webhook", zap.String("clerk_id", ev.Data.ID))
	writeJSON(w, http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	var req roleUpdateRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	u, err := h.users.UpdateRole(r.Context(), req.ClerkID, req.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) checkRole(w http.ResponseWriter, r *http.Request) {
	clerkID, err := requiredQuery(r, "clerkId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	role, err := h.users.CheckRole(r.Context(), clerkID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, checkRoleResponse{
		IsProfessor: role == entities.RoleProfessor,
		IsStudent:   role == entities.RoleStudent,
		Role:        string(role),
	})
}

func (h *Handler) getUserByClerkID(w http.ResponseWriter, r *http.Request) {
	clerkID := strings.TrimSpace(chi.URLParam(r, "clerkId"))
	if clerkID == "" {
		h.writeError(w, r, apperr.Validation("clerkId is required"))
		return
	}

	u, err := h.users.GetByClerkID(r.Context(), clerkID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}
