package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/vibehive/backend/internal/domain"
	"github.com/vibehive/backend/internal/service"
	"github.com/vibehive/backend/internal/transport/http/middleware"
)

type AdminHandler struct {
	adminService *service.AdminService
	userService  *service.UserService
}

func NewAdminHandler(adminService *service.AdminService, userService *service.UserService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		userService:  userService,
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	users, err := h.adminService.ListUsers(r.Context(), actor)
	if err != nil {
		h.writeAdminError(w, "list users", err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	var input struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.adminService.SetRole(r.Context(), actor, userID, input.Role)
	if err != nil {
		h.writeAdminError(w, "set role", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	if err := h.adminService.DeleteUser(r.Context(), actor, userID); err != nil {
		h.writeAdminError(w, "delete user", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) DeleteDiscussion(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid discussion ID")
		return
	}

	if err := h.adminService.DeleteDiscussion(r.Context(), actor, id); err != nil {
		h.writeAdminError(w, "delete discussion", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) writeAdminError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotAdmin):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Admin role required")
	case errors.Is(err, service.ErrCannotSelfDemote):
		writeError(w, http.StatusBadRequest, "CANNOT_CHANGE_OWN_ROLE", "Cannot change your own role")
	case errors.Is(err, service.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "INVALID_ROLE", "Role must be user or admin")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrDiscussionNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Discussion not found")
	default:
		log.Printf("ERROR admin %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}

func (h *AdminHandler) currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, err := h.userService.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unknown user")
		return nil, false
	}
	return user, true
}
