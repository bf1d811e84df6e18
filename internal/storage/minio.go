package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// MinIOStorage keeps the raw uploaded files next to the catalog
type MinIOStorage struct {
	client     *minio.Client
	bucketName string
	endpoint   string
}

// NewMinIOStorage creates a new MinIO storage client
func NewMinIOStorage(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOStorage, error) {
	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	storage := &MinIOStorage{
		client:     minioClient,
		bucketName: bucketName,
		endpoint:   endpoint,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := minioClient.BucketExists(ctx, bucketName)
	if err != nil {
		log.Warn().Err(err).Msgf("Failed to check bucket existence for %s (will continue)", bucketName)
	} else if !exists {
		if err := minioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Error().Err(err).Msgf("Failed to create bucket %s", bucketName)
		} else {
			log.Info().Msgf("Bucket %s created successfully", bucketName)
		}
	}

	log.Info().
		Str("endpoint", endpoint).
		Str("bucket", bucketName).
		Msg("MinIO storage initialized")

	return storage, nil
}

// ArchiveKey builds the object key of an upload: uploads/<date>/<entry id>/<uuid><ext>
func ArchiveKey(entryID int, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("uploads/%s/%d/%s%s", now.Format("2006-01-02"), entryID, uuid.New().String(), ext)
}

// ArchiveUpload stores the raw file of an entry and returns its object key
func (s *MinIOStorage) ArchiveUpload(ctx context.Context, entryID int, filename, contentType string, content []byte) (string, error) {
	key := ArchiveKey(entryID, filename, time.Now())
	if contentType == "" {
		contentType = "text/csv"
	}

	_, err := s.client.PutObject(
		ctx,
		s.bucketName,
		key,
		bytes.NewReader(content),
		int64(len(content)),
		minio.PutObjectOptions{
			ContentType:  contentType,
			UserMetadata: map[string]string{"filename": filepath.Base(filename)},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to archive upload: %w", err)
	}

	log.Info().
		Str("filename", filename).
		Str("key", key).
		Int("entry_id", entryID).
		Msg("Upload archived successfully")

	return key, nil
}

// HealthCheck verifies the MinIO connection
func (s *MinIOStorage) HealthCheck(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("MinIO health check failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket '%s' does not exist", s.bucketName)
	}
	return nil
}
