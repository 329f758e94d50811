package handlers

import (
	"net/http"

	"github.com/aldis-z/notice-board/internal/api/middleware"
	"github.com/aldis-z/notice-board/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type LikeHandler struct {
	likeService *service.LikeService
	authService *service.AuthService
}

func NewLikeHandler(likeService *service.LikeService, authService *service.AuthService) *LikeHandler {
	return &LikeHandler{likeService: likeService, authService: authService}
}

func (h *LikeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	profileID, err := callerProfileID(r, h.authService)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	noticeID, err := uuid.Parse(chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeError(w, "Invalid notice id", http.StatusBadRequest)
		return
	}

	state, err := h.likeService.Toggle(r.Context(), noticeID, profileID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, state, http.StatusOK)
}

// Status works for anonymous callers too; IsLiked is simply false then.
func (h *LikeHandler) Status(w http.ResponseWriter, r *http.Request) {
	noticeID, err := uuid.Parse(chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeError(w, "Invalid notice id", http.StatusBadRequest)
		return
	}

	profileID := uuid.Nil
	if userID, ok := middleware.GetUserID(r.Context()); ok {
		if id, err := h.authService.GetProfileID(r.Context(), userID); err == nil {
			profileID = id
		}
	}

	state, err := h.likeService.Status(r.Context(), noticeID, profileID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, state, http.StatusOK)
}
