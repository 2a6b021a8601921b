package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/config"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Object store folders
const (
	FolderQuizImages        = "quiz-images"
	FolderQuestionImages    = "question-images"
	FolderResourceMaterials = "resource-materials"
)

// File is an upload payload.
type File struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

// ObjectStore uploads and deletes blobs.
type ObjectStore interface {
	Upload(ctx context.Context, file File, folder string) (*models.StoredObject, error)
	Delete(ctx context.Context, key string) error
}

// MinioStore is an ObjectStore backed by any S3-compatible service.
type MinioStore struct {
	client *minio.Client
	cfg    config.StorageConfig
	logger *slog.Logger
}

func NewMinioStore(client *minio.Client, cfg config.StorageConfig, logger *slog.Logger) *MinioStore {
	return &MinioStore{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// EnsureBucket creates the configured bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.cfg.Bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.cfg.Bucket, err)
	}
	s.logger.Info("Created storage bucket", "bucket", s.cfg.Bucket)
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, file File, folder string) (*models.StoredObject, error) {
	key := ObjectKey(folder, file.FileName)
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := s.client.PutObject(ctx, s.cfg.Bucket, key, file.Reader, file.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	s.logger.Debug("Uploaded object", "key", key, "size", info.Size)

	return &models.StoredObject{
		URL:      ObjectURL(s.cfg, key),
		Key:      key,
		FileName: file.FileName,
		FileSize: file.Size,
		FileType: contentType,
	}, nil
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.cfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// ObjectKey builds "<folder>/<uuid><ext>", keeping the original extension.
func ObjectKey(folder, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return path.Join(folder, uuid.NewString()+ext)
}

// ObjectURL returns the public URL of a key. An explicit PublicURL wins; AWS
// endpoints use virtual-hosted style, anything else path style.
func ObjectURL(cfg config.StorageConfig, key string) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/") + "/" + key
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	if strings.HasSuffix(cfg.Endpoint, "amazonaws.com") {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.Bucket, cfg.Region, key)
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, cfg.Endpoint, cfg.Bucket, key)
}
