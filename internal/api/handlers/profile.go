package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/aldis-z/notice-board/internal/api/middleware"
	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/aldis-z/notice-board/internal/service"
	"github.com/aldis-z/notice-board/internal/storage"
	"github.com/go-chi/chi/v5"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	authService    *service.AuthService
	uploader       storage.Uploader
}

func NewProfileHandler(profileService *service.ProfileService, authService *service.AuthService, uploader storage.Uploader) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		authService:    authService,
		uploader:       uploader,
	}
}

type ProfileUpdateRequest struct {
	Name  string `json:"name"`
	About string `json:"about"`
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	profileID, err := callerProfileID(r, h.authService)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.profileService.Update(r.Context(), profileID, service.ProfileUpdateInput{
		Name:  req.Name,
		About: req.About,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, profile, http.StatusOK)
}

func (h *ProfileHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	profileID, err := callerProfileID(r, h.authService)
	if err != nil {
		writeDomainError(w, err)
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

	result, err := h.uploader.Upload(r.Context(), "avatars/"+profileID.String(), header.Filename, file, header.Size)
	if err != nil {
		log.Printf("ERROR [ProfileHandler] upload failed: %v", err)
		writeDomainError(w, err)
		return
	}

	previousFileID, err := h.profileService.SetImage(r.Context(), profileID, result.URL, result.FileID)
	if err != nil {
		if delErr := h.uploader.Delete(r.Context(), result.FileID); delErr != nil {
			log.Printf("ERROR [ProfileHandler] failed to delete file %s: %v", result.FileID, delErr)
		}
		writeDomainError(w, err)
		return
	}

	if previousFileID != "" {
		if err := h.uploader.Delete(r.Context(), previousFileID); err != nil {
			log.Printf("ERROR [ProfileHandler] failed to delete file %s: %v", previousFileID, err)
		}
	}

	writeJSON(w, map[string]string{"image": result.URL}, http.StatusOK)
}

func (h *ProfileHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, profile, http.StatusOK)
}

// OwnProfileResponse adds the account fields only the owner may see.
type OwnProfileResponse struct {
	*domain.Profile
	Email         string     `json:"email"`
	EmailVerified *time.Time `json:"emailVerified"`
}

func (h *ProfileHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := h.profileService.GetOwn(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, OwnProfileResponse{
		Profile:       profile,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
	}, http.StatusOK)
}
