package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aldis-z/notice-board/internal/config"
	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// UploadResult pairs the public URL with the store-internal object id. The
// id, not the URL, is what Delete needs.
type UploadResult struct {
	URL    string
	FileID string
}

type Uploader interface {
	Upload(ctx context.Context, prefix, fileName string, file io.Reader, size int64) (*UploadResult, error)
	Delete(ctx context.Context, fileID string) error
}

type MinIOStorage struct {
	client *minio.Client
	cfg    config.MinIOConfig
}

func NewMinIOStorage(ctx context.Context, cfg config.MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinIOStorage{client: client, cfg: cfg}, nil
}

func (s *MinIOStorage) Upload(ctx context.Context, prefix, fileName string, file io.Reader, size int64) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".jpg"
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, objectName, file, size,
		minio.PutObjectOptions{
			ContentType:  contentType,
			UserMetadata: map[string]string{"original-filename": fileName},
		})
	if err != nil {
		return nil, fmt.Errorf("%w: uploading %s: %v", domain.ErrExternalService, objectName, err)
	}

	return &UploadResult{
		URL:    fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.cfg.PublicURL, "/"), s.cfg.Bucket, objectName),
		FileID: objectName,
	}, nil
}

func (s *MinIOStorage) Delete(ctx context.Context, fileID string) error {
	err := s.client.RemoveObject(ctx, s.cfg.Bucket, fileID, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("%w: removing %s: %v", domain.ErrExternalService, fileID, err)
	}
	return nil
}
