package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"wavecrate/config"
	"wavecrate/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// SignedURLTTL is how long issued signed URLs stay valid. Seven days is
// also the longest expiry MinIO's presign API accepts.
const SignedURLTTL = 7 * 24 * time.Hour

// BackupStorage is the object-storage backup: an advisory second copy of
// every uploaded file, reachable through time-limited signed URLs. All
// calls are single-attempt; retries are deliberately absent.
type BackupStorage interface {
	// Upload stores a payload under key and returns a signed GET URL for it.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// SignedURL issues a fresh signed GET URL for an already stored key.
	SignedURL(ctx context.Context, key string) (string, error)
	// Remove deletes the object stored under key.
	Remove(ctx context.Context, key string) error
}

// MinioBackup implements BackupStorage on a MinIO (or any S3-compatible)
// bucket.
type MinioBackup struct {
	client *minio.Client
	bucket string
}

// NewBackupStorage connects to the configured MinIO endpoint and makes
// sure the bucket exists, creating it if necessary.
func NewBackupStorage(cfg *config.Config) (*MinioBackup, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("created backup bucket", logger.String("bucket", cfg.MinioBucket))
	}

	return &MinioBackup{client: client, bucket: cfg.MinioBucket}, nil
}

// Upload stores the payload and returns a signed URL valid for SignedURLTTL.
func (m *MinioBackup) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return m.SignedURL(ctx, key)
}

// SignedURL issues a fresh signed GET URL for key.
func (m *MinioBackup) SignedURL(ctx context.Context, key string) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, SignedURLTTL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	return u.String(), nil
}

// Remove deletes the object stored under key.
func (m *MinioBackup) Remove(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}
