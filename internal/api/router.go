package api

import (
	"net/http"

	"github.com/aldis-z/notice-board/internal/api/handlers"
	"github.com/aldis-z/notice-board/internal/api/middleware"
	"github.com/aldis-z/notice-board/internal/service"
	"github.com/aldis-z/notice-board/internal/storage"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, uploader storage.Uploader) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	noticeHandler := handlers.NewNoticeHandler(services.Notice, services.Auth, uploader)
	commentHandler := handlers.NewCommentHandler(services.Comment, services.Auth)
	likeHandler := handlers.NewLikeHandler(services.Like, services.Auth)
	profileHandler := handlers.NewProfileHandler(services.Profile, services.Auth, uploader)
	categoryHandler := handlers.NewCategoryHandler(services.Category)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-up", authHandler.SignUp)
			r.Post("/sign-in", authHandler.SignIn)
			r.Post("/verify-email", authHandler.VerifyEmail)
			r.Post("/resend-verification", authHandler.ResendVerification)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/change-password", authHandler.ChangePassword)
			})
		})

		// Category routes (public)
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.List)
			r.Get("/{slug}", categoryHandler.GetBySlug)
		})

		// Public notice reads. The same path segment serves slugs on the
		// detail route and ids everywhere else, so the param name is shared.
		r.Get("/notices", noticeHandler.List)
		r.Get("/notices/{idOrSlug}", noticeHandler.GetBySlug)
		r.Get("/notices/{idOrSlug}/comments", commentHandler.ListByNotice)
		r.With(middleware.OptionalAuth(services.Auth)).
			Get("/notices/{idOrSlug}/like", likeHandler.Status)

		// Public profile reads
		r.Get("/profiles/{slug}", profileHandler.GetBySlug)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			// Notice routes
			r.Route("/notices", func(r chi.Router) {
				r.Post("/", noticeHandler.Create)
				r.Put("/{idOrSlug}", noticeHandler.Update)
				r.Delete("/{idOrSlug}", noticeHandler.Delete)
				r.Post("/{idOrSlug}/images", noticeHandler.UploadImage)
				r.Delete("/{idOrSlug}/images", noticeHandler.RemoveImages)
				r.Put("/{idOrSlug}/main-image", noticeHandler.SetMainImage)
				r.Post("/{idOrSlug}/like", likeHandler.Toggle)
				r.Post("/{idOrSlug}/comments", commentHandler.Create)
			})

			// Comment routes
			r.Route("/comments", func(r chi.Router) {
				r.Put("/{id}", commentHandler.Update)
				r.Delete("/{id}", commentHandler.Delete)
			})

			// Own resources
			r.Route("/me", func(r chi.Router) {
				r.Get("/profile", profileHandler.GetOwn)
				r.Put("/profile", profileHandler.Update)
				r.Post("/profile/image", profileHandler.UploadImage)
				r.Get("/notices", noticeHandler.ListOwn)
				r.Get("/notices/{id}", noticeHandler.GetOwn)
			})
		})
	})

	return r
}
