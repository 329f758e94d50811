package testutil

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aldis-z/notice-board/internal/api"
	"github.com/aldis-z/notice-board/internal/config"
	"github.com/aldis-z/notice-board/internal/mail"
	"github.com/aldis-z/notice-board/internal/repository"
	repoPostgres "github.com/aldis-z/notice-board/internal/repository/postgres"
	"github.com/aldis-z/notice-board/internal/service"
	"github.com/aldis-z/notice-board/internal/storage"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_notice_board"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"notice_likes",
		"comments",
		"notice_images",
		"notices",
		"categories",
		"verification_tokens",
		"password_reset_tokens",
		"profiles",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0", // Random port
		Environment:        "test",
		JWTSecret:          "test-jwt-secret-key-for-testing-only",
		JWTExpirationHours: 1,
	}
}

// MailRecorder captures outgoing mail instead of sending it.
type MailRecorder struct {
	mu   sync.Mutex
	Sent []mail.Message
}

func (r *MailRecorder) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, msg)
	return nil
}

// Last returns the most recently recorded message.
func (r *MailRecorder) Last(t *testing.T) mail.Message {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Sent) == 0 {
		t.Fatal("no mail was sent")
	}
	return r.Sent[len(r.Sent)-1]
}

// FakeUploader stores nothing, tracking uploads and deletes in memory.
type FakeUploader struct {
	mu      sync.Mutex
	Objects map[string]string // fileID -> URL
	Deleted []string
}

func NewFakeUploader() *FakeUploader {
	return &FakeUploader{Objects: make(map[string]string)}
}

func (u *FakeUploader) Upload(_ context.Context, prefix, fileName string, file io.Reader, size int64) (*storage.UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fileID := fmt.Sprintf("%s/%s", prefix, uuid.New().String())
	url := "http://images.test/" + fileID
	u.Objects[fileID] = url
	return &storage.UploadResult{URL: url, FileID: fileID}, nil
}

func (u *FakeUploader) Delete(_ context.Context, fileID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.Objects, fileID)
	u.Deleted = append(u.Deleted, fileID)
	return nil
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Mail     *MailRecorder
	Uploader *FakeUploader
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()

	repos := repoPostgres.NewRepositories(testDB.DB)
	recorder := &MailRecorder{}
	uploader := NewFakeUploader()

	services := service.NewServices(repos, cfg, recorder)
	router := api.NewRouter(services, uploader)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Mail:     recorder,
		Uploader: uploader,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}
