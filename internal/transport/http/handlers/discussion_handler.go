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
	"github.com/vibehive/backend/pkg/validator"
)

type DiscussionHandler struct {
	discussionService *service.DiscussionService
	userService       *service.UserService
}

func NewDiscussionHandler(discussionService *service.DiscussionService, userService *service.UserService) *DiscussionHandler {
	return &DiscussionHandler{
		discussionService: discussionService,
		userService:       userService,
	}
}

func (h *DiscussionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var input struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateDiscussion(input.Title, input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	d, err := h.discussionService.Create(r.Context(), user, input.Title, input.Content)
	if err != nil {
		log.Printf("ERROR create discussion: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

func (h *DiscussionHandler) List(w http.ResponseWriter, r *http.Request) {
	discussions, err := h.discussionService.List(r.Context())
	if err != nil {
		log.Printf("ERROR list discussions: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, discussions)
}

func (h *DiscussionHandler) Like(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid discussion ID")
		return
	}

	likes, err := h.discussionService.Like(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrDiscussionNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Discussion not found")
		} else {
			log.Printf("ERROR like discussion: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"likes": likes})
}

func (h *DiscussionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid discussion ID")
		return
	}

	if err := h.discussionService.Delete(r.Context(), user, id); err != nil {
		switch {
		case errors.Is(err, service.ErrDiscussionNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Discussion not found")
		case errors.Is(err, service.ErrNotDiscussionOwner):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the author or an admin can delete this")
		default:
			log.Printf("ERROR delete discussion: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DiscussionHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid discussion ID")
		return
	}

	comments, err := h.discussionService.ListComments(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrDiscussionNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Discussion not found")
		} else {
			log.Printf("ERROR list comments: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

func (h *DiscussionHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid discussion ID")
		return
	}

	var input struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateComment(input.Text); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	comment, err := h.discussionService.AddComment(r.Context(), user, id, input.Text)
	if err != nil {
		if errors.Is(err, service.ErrDiscussionNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Discussion not found")
		} else {
			log.Printf("ERROR add comment: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *DiscussionHandler) currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, err := h.userService.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unknown user")
		return nil, false
	}
	return user, true
}
