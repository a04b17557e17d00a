package media

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"wavecrate/core/stats"
	"wavecrate/logger"
	"wavecrate/model"
	"wavecrate/repository"
	"wavecrate/storage"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// ErrTrackNotFound is returned when an id does not exist in the catalog.
var ErrTrackNotFound = errors.New("track not found")

// ErrBackupDisabled is returned by explicit URL refreshes when no backup
// storage is configured.
var ErrBackupDisabled = errors.New("backup storage is not configured")

// DefaultRefreshAfter is the age at which signed backup URLs are
// regenerated on listing: one day before the 7-day URL expiry.
const DefaultRefreshAfter = 6 * 24 * time.Hour

const (
	audioContentType = "audio/mpeg"
	imageContentType = "image/jpeg"
)

// BackupStatus reports the outcome of the best-effort backup half of an
// upload. The local write is authoritative; the backup is advisory.
type BackupStatus int

const (
	// BackupStored means both objects reached the backup bucket.
	BackupStored BackupStatus = iota
	// BackupFailed means at least one backup write failed; the track is
	// local-only.
	BackupFailed
	// BackupDisabled means no backup storage is configured.
	BackupDisabled
)

func (s BackupStatus) String() string {
	switch s {
	case BackupStored:
		return "stored"
	case BackupFailed:
		return "failed"
	case BackupDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Service orchestrates the catalog, the primary file store and the
// object-storage backup: uploads, deletions, listings with lazy URL
// refresh, and play/download tracking.
type Service struct {
	catalog  repository.CatalogRepository
	files    *storage.FileStore
	backup   storage.BackupStorage // nil disables the backup
	counters *stats.Counters

	refreshAfter time.Duration
	now          func() time.Time
}

// NewService wires the media service. backup may be nil, in which case
// every upload produces a local-only record.
func NewService(catalog repository.CatalogRepository, files *storage.FileStore, backup storage.BackupStorage, counters *stats.Counters) *Service {
	return &Service{
		catalog:      catalog,
		files:        files,
		backup:       backup,
		counters:     counters,
		refreshAfter: DefaultRefreshAfter,
		now:          time.Now,
	}
}

// UploadRequest carries one upload: metadata plus both payloads held
// fully in memory.
type UploadRequest struct {
	Name     string
	Artist   string
	Category string
	Audio    []byte
	Image    []byte
}

// ValidationError marks an upload rejected before any storage was
// touched. The HTTP layer maps it to a 4xx.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func (r *UploadRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return &ValidationError{msg: "song name is required"}
	case strings.TrimSpace(r.Artist) == "":
		return &ValidationError{msg: "artist name is required"}
	case strings.TrimSpace(r.Category) == "":
		return &ValidationError{msg: "category is required"}
	case len(r.Audio) == 0:
		return &ValidationError{msg: "song file is required"}
	case len(r.Image) == 0:
		return &ValidationError{msg: "song image is required"}
	}
	return nil
}

// Upload runs the upload pipeline: generate an id, persist both payloads
// locally (the durability boundary — any failure here aborts the upload),
// copy them to the backup best-effort, and insert the record. The
// returned BackupStatus makes the dual-write outcome explicit.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*model.Track, BackupStatus, error) {
	if err := req.validate(); err != nil {
		return nil, BackupDisabled, err
	}

	// Fixed extensions regardless of the uploaded format is an accepted
	// simplification, not format detection.
	id := uuid.NewString()
	audioFilename := id + ".mp3"
	imageFilename := id + ".jpg"
	audioKey := "songs/audio/" + audioFilename
	imageKey := "songs/images/" + imageFilename

	audioURL, err := s.files.SaveAudio(audioFilename, req.Audio)
	if err != nil {
		return nil, BackupDisabled, fmt.Errorf("failed to save audio: %w", err)
	}
	imageURL, err := s.files.SaveImage(imageFilename, req.Image)
	if err != nil {
		// Don't leave an orphaned audio file behind.
		if rmErr := s.files.Remove(audioURL); rmErr != nil {
			logger.Warn("failed to clean up audio after image save failure",
				logger.String("trackId", id), logger.ErrorField(rmErr))
		}
		return nil, BackupDisabled, fmt.Errorf("failed to save image: %w", err)
	}

	track := &model.Track{
		ID:             id,
		Name:           req.Name,
		Artist:         req.Artist,
		Category:       strings.ToLower(req.Category),
		AudioURL:       audioURL,
		ImageURL:       imageURL,
		BackupAudioKey: audioKey,
		BackupImageKey: imageKey,
		AudioChecksum:  checksum(req.Audio),
		ImageChecksum:  checksum(req.Image),
		UploadedAt:     s.now(),
	}

	status := s.backupUpload(ctx, track, req.Audio, req.Image)

	s.catalog.Insert(track)
	logger.Info("track uploaded",
		logger.String("trackId", id),
		logger.String("name", track.Name),
		logger.String("category", track.Category),
		logger.String("backup", status.String()))

	return track, status, nil
}

// backupUpload copies both payloads to the backup bucket concurrently.
// Any failure degrades the record to local-only; it never fails the
// upload.
func (s *Service) backupUpload(ctx context.Context, track *model.Track, audio, image []byte) BackupStatus {
	if s.backup == nil {
		return BackupDisabled
	}

	var (
		wg                 sync.WaitGroup
		audioURL, imageURL string
		audioErr, imageErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		audioURL, audioErr = s.backup.Upload(ctx, track.BackupAudioKey, audio, audioContentType)
	}()
	go func() {
		defer wg.Done()
		imageURL, imageErr = s.backup.Upload(ctx, track.BackupImageKey, image, imageContentType)
	}()
	wg.Wait()

	if audioErr != nil || imageErr != nil {
		logger.Warn("backup upload failed, keeping local copies only",
			logger.String("trackId", track.ID),
			logger.ErrorField(errors.Join(audioErr, imageErr)))
		return BackupFailed
	}

	track.BackupAudioURL = &audioURL
	track.BackupImageURL = &imageURL
	return BackupStored
}

// Delete removes a track: the catalog entry goes away unconditionally,
// the local files and backup objects best-effort. Not transactional by
// design.
func (s *Service) Delete(ctx context.Context, id string) error {
	removed, ok := s.catalog.Remove(id)
	if !ok {
		return ErrTrackNotFound
	}

	for _, publicPath := range []string{removed.AudioURL, removed.ImageURL} {
		if err := s.files.Remove(publicPath); err != nil {
			logger.Warn("failed to remove local file",
				logger.String("trackId", id),
				logger.String("path", publicPath),
				logger.ErrorField(err))
		}
	}

	if s.backup != nil && removed.HasBackup() {
		var wg sync.WaitGroup
		for _, key := range []string{removed.BackupAudioKey, removed.BackupImageKey} {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				if err := s.backup.Remove(ctx, key); err != nil {
					logger.Warn("failed to remove backup object",
						logger.String("trackId", id),
						logger.String("key", key),
						logger.ErrorField(err))
				}
			}(key)
		}
		wg.Wait()
	}

	logger.Info("track deleted",
		logger.String("trackId", id),
		logger.String("name", removed.Name))
	return nil
}

// RecordPlay bumps the global play counter. The id is not validated;
// plays against unknown ids still count.
func (s *Service) RecordPlay() {
	s.counters.RecordPlay()
}

// Download bumps the global download counter and resolves the primary
// audio URL for id. The counter is incremented before the lookup, so a
// failed resolution still counts as a download attempt.
func (s *Service) Download(id string) (string, error) {
	s.counters.RecordDownload()
	track, ok := s.catalog.Find(id)
	if !ok {
		return "", ErrTrackNotFound
	}
	return track.AudioURL, nil
}

// TotalTracks returns the current catalog size.
func (s *Service) TotalTracks() int {
	return s.catalog.Len()
}

func checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
