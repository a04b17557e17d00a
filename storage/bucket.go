package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
)

// BucketStats aggregates object counts and sizes under a prefix.
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// ListObjects lists all objects under prefix together with aggregate stats.
func (m *MinioBackup) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, *BucketStats, error) {
	stats := &BucketStats{}
	var objects []ObjectInfo

	objectCh := m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		stats.TotalObjects++
		stats.TotalSize += object.Size
		if object.LastModified.After(stats.LastModified) {
			stats.LastModified = object.LastModified
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  object.ContentType,
		})
	}
	return objects, stats, nil
}

// PrintBucketStatus prints a human-readable report of the bucket contents
// under prefix. Used by the minio subcommand.
func (m *MinioBackup) PrintBucketStatus(ctx context.Context, prefix string) error {
	objects, stats, err := m.ListObjects(ctx, prefix)
	if err != nil {
		return err
	}

	log.Printf("Bucket report: %s (prefix %q)", m.bucket, prefix)
	log.Printf("  objects: %d", stats.TotalObjects)
	log.Printf("  total size: %s", formatSize(stats.TotalSize))
	if !stats.LastModified.IsZero() {
		log.Printf("  last modified: %s", stats.LastModified.Format(time.RFC3339))
	}
	for _, obj := range objects {
		log.Printf("  %s (%s, %s)", obj.Key, formatSize(obj.Size), obj.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// DeletePrefix removes every object under prefix and returns how many were
// deleted.
func (m *MinioBackup) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	objects, _, err := m.ListObjects(ctx, prefix)
	if err != nil {
		return 0, err
	}
	if len(objects) == 0 {
		return 0, fmt.Errorf("no objects under prefix %q", prefix)
	}

	objectsCh := make(chan minio.ObjectInfo, len(objects))
	go func() {
		defer close(objectsCh)
		for _, obj := range objects {
			objectsCh <- minio.ObjectInfo{Key: obj.Key}
		}
	}()

	for err := range m.client.RemoveObjects(ctx, m.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if err.Err != nil {
			return 0, fmt.Errorf("failed to remove object %s: %w", err.ObjectName, err.Err)
		}
	}
	return len(objects), nil
}

// formatSize renders a byte count as a human-readable string.
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
