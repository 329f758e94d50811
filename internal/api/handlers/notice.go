package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/aldis-z/notice-board/internal/api/middleware"
	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/aldis-z/notice-board/internal/service"
	"github.com/aldis-z/notice-board/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxImageUploadBytes = 10 << 20

type NoticeHandler struct {
	noticeService *service.NoticeService
	authService   *service.AuthService
	uploader      storage.Uploader
}

func NewNoticeHandler(noticeService *service.NoticeService, authService *service.AuthService, uploader storage.Uploader) *NoticeHandler {
	return &NoticeHandler{
		noticeService: noticeService,
		authService:   authService,
		uploader:      uploader,
	}
}

// callerProfileID resolves the authenticated user to the profile that owns
// notices, comments and likes.
func callerProfileID(r *http.Request, authService *service.AuthService) (uuid.UUID, error) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return authService.GetProfileID(r.Context(), userID)
}

type NoticeRequest struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	CategoryID string `json:"categoryId"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	Price      int64  `json:"price"`
}

func (h *NoticeHandler) Create(w http.ResponseWriter, r *http.Request) {
	profileID, err := callerProfileID(r, h.authService)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req NoticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeError(w, "Invalid category id", http.StatusBadRequest)
		return
	}

	notice, err := h.noticeService.Create(r.Context(), profileID, service.NoticeCreateInput{
		Title:      req.Title,
		Text:       req.Text,
		CategoryID: categoryID,
		Type:       domain.NoticeType(req.Type),
		Status:     domain.NoticeStatus(req.Status),
		Price:      req.Price,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, notice, http.StatusCreated)
}

func (h *NoticeHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req NoticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeError(w, "Invalid category id", http.StatusBadRequest)
		return
	}

	notice, err := h.noticeService.Update(r.Context(), noticeID, profileID, service.NoticeUpdateInput{
		Text:       req.Text,
		CategoryID: categoryID,
		Type:       domain.NoticeType(req.Type),
		Status:     domain.NoticeStatus(req.Status),
		Price:      req.Price,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, notice, http.StatusOK)
}

func (h *NoticeHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	fileIDs, err := h.noticeService.Delete(r.Context(), noticeID, profileID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.cleanupFiles(fileIDs)

	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

// cleanupFiles removes image objects after their rows are gone. Failures are
// logged, never surfaced; an orphaned object costs storage, a dangling row
// would cost correctness.
func (h *NoticeHandler) cleanupFiles(fileIDs []string) {
	if len(fileIDs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, fileID := range fileIDs {
		if err := h.uploader.Delete(ctx, fileID); err != nil {
			log.Printf("ERROR [NoticeHandler] failed to delete file %s: %v", fileID, err)
		}
	}
}

func (h *NoticeHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		writeError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, "Image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.uploader.Upload(r.Context(), "notices/"+noticeID.String(), header.Filename, file, header.Size)
	if err != nil {
		log.Printf("ERROR [NoticeHandler] upload failed: %v", err)
		writeDomainError(w, err)
		return
	}

	image, err := h.noticeService.AddImage(r.Context(), noticeID, profileID, result.URL, result.FileID)
	if err != nil {
		// The object landed but the row did not; remove the object so a
		// rejected upload leaves nothing behind.
		h.cleanupFiles([]string{result.FileID})
		writeDomainError(w, err)
		return
	}

	writeJSON(w, image, http.StatusCreated)
}

type RemoveImagesRequest struct {
	ImageIDs []string `json:"imageIds"`
}

func (h *NoticeHandler) RemoveImages(w http.ResponseWriter, r *http.Request) {
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

	var req RemoveImagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	imageIDs := make([]uuid.UUID, 0, len(req.ImageIDs))
	for _, raw := range req.ImageIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, "Invalid image id", http.StatusBadRequest)
			return
		}
		imageIDs = append(imageIDs, id)
	}

	fileIDs, err := h.noticeService.RemoveImages(r.Context(), noticeID, profileID, imageIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.cleanupFiles(fileIDs)

	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

type SetMainImageRequest struct {
	URL string `json:"url"`
}

func (h *NoticeHandler) SetMainImage(w http.ResponseWriter, r *http.Request) {
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

	var req SetMainImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.noticeService.SetMainImage(r.Context(), noticeID, profileID, req.URL); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

type NoticeListResponse struct {
	Notices []*domain.Notice `json:"notices"`
	Total   int64            `json:"total"`
}

func (h *NoticeHandler) List(w http.ResponseWriter, r *http.Request) {
	input, err := parseListQuery(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := h.noticeService.ListPublished(r.Context(), *input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, NoticeListResponse{Notices: list.Notices, Total: list.Total}, http.StatusOK)
}

func (h *NoticeHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	notice, err := h.noticeService.GetBySlug(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, notice, http.StatusOK)
}

func (h *NoticeHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	profileID, err := callerProfileID(r, h.authService)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	input, err := parseListQuery(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var status *domain.NoticeStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.NoticeStatus(raw)
		if !s.IsValid() {
			writeError(w, "Invalid status", http.StatusBadRequest)
			return
		}
		status = &s
	}

	list, err := h.noticeService.ListOwn(r.Context(), profileID, *input, status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, NoticeListResponse{Notices: list.Notices, Total: list.Total}, http.StatusOK)
}

func (h *NoticeHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	profileID, err := callerProfileID(r, h.authService)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	noticeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Invalid notice id", http.StatusBadRequest)
		return
	}

	notice, err := h.noticeService.GetOwn(r.Context(), noticeID, profileID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, notice, http.StatusOK)
}

func parseListQuery(r *http.Request) (*service.NoticeListInput, error) {
	q := r.URL.Query()
	input := &service.NoticeListInput{
		Search:  q.Get("search"),
		OrderBy: q.Get("orderBy"),
	}

	if raw := q.Get("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errInvalidQuery("categoryId")
		}
		input.CategoryID = &id
	}
	if raw := q.Get("type"); raw != "" {
		t := domain.NoticeType(raw)
		if !t.IsValid() {
			return nil, errInvalidQuery("type")
		}
		input.Type = &t
	}
	if raw := q.Get("priceMin"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errInvalidQuery("priceMin")
		}
		input.PriceMin = &v
	}
	if raw := q.Get("priceMax"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errInvalidQuery("priceMax")
		}
		input.PriceMax = &v
	}
	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errInvalidQuery("page")
		}
		input.Page = v
	}
	if raw := q.Get("pageSize"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errInvalidQuery("pageSize")
		}
		input.PageSize = v
	}

	return input, nil
}

func errInvalidQuery(param string) error {
	return fmt.Errorf("invalid query parameter: %s", param)
}
