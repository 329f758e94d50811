package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aldis-z/notice-board/internal/api"
	"github.com/aldis-z/notice-board/internal/config"
	"github.com/aldis-z/notice-board/internal/mail"
	"github.com/aldis-z/notice-board/internal/repository/postgres"
	"github.com/aldis-z/notice-board/internal/service"
	"github.com/aldis-z/notice-board/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Initialize image storage
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	uploader, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to image storage: %v", err)
	}

	// Without SMTP settings codes are logged instead of emailed, which is
	// what local development wants anyway.
	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		})
	}

	// Initialize services
	services := service.NewServices(repos, cfg, mailer)

	// Seed the category taxonomy on first start
	if err := services.Category.Seed(context.Background()); err != nil {
		log.Fatalf("failed to seed categories: %v", err)
	}

	// Initialize router
	router := api.NewRouter(services, uploader)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
