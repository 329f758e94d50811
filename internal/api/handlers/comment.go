package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aldis-z/notice-board/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CommentHandler struct {
	commentService *service.CommentService
	authService    *service.AuthService
}

func NewCommentHandler(commentService *service.CommentService, authService *service.AuthService) *CommentHandler {
	return &CommentHandler{commentService: commentService, authService: authService}
}

type CommentRequest struct {
	Text     string  `json:"text"`
	ParentID *string `json:"parentId"`
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	input := service.CommentCreateInput{Text: req.Text}
	if req.ParentID != nil {
		parentID, err := uuid.Parse(*req.ParentID)
		if err != nil {
			writeError(w, "Invalid parent id", http.StatusBadRequest)
			return
		}
		input.ParentID = &parentID
	}

	comment, err := h.commentService.Create(r.Context(), noticeID, profileID, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, comment, http.StatusCreated)
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	profileID, err := callerProfileID(r, h.authService)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	commentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Invalid comment id", http.StatusBadRequest)
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.commentService.Update(r.Context(), commentID, profileID, req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, comment, http.StatusOK)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	profileID, err := callerProfileID(r, h.authService)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	commentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Invalid comment id", http.StatusBadRequest)
		return
	}

	if err := h.commentService.Delete(r.Context(), commentID, profileID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

func (h *CommentHandler) ListByNotice(w http.ResponseWriter, r *http.Request) {
	noticeID, err := uuid.Parse(chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeError(w, "Invalid notice id", http.StatusBadRequest)
		return
	}

	comments, err := h.commentService.ListByNotice(r.Context(), noticeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, comments, http.StatusOK)
}
