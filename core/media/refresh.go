package media

import (
	"context"
	"sync"
	"time"

	"wavecrate/logger"
	"wavecrate/model"
)

// List returns the catalog filtered by category, lazily refreshing
// signed backup URLs that are close to expiry. Refreshes of different
// records run concurrently and independently; one record failing never
// aborts its siblings.
func (s *Service) List(ctx context.Context, category string) []model.Track {
	tracks := s.catalog.List(category)
	if s.backup == nil {
		return tracks
	}

	var wg sync.WaitGroup
	for i := range tracks {
		track := &tracks[i]
		if !s.needsRefresh(track) {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.refreshTrack(ctx, track)
		}()
	}
	wg.Wait()

	return tracks
}

// needsRefresh reports whether a track's signed URLs are older than the
// refresh threshold. Staleness is measured from the last refresh when
// one has happened, otherwise from the upload time. Records that never
// made it to backup storage have nothing to refresh.
func (s *Service) needsRefresh(track *model.Track) bool {
	if !track.HasBackup() {
		return false
	}
	base := track.UploadedAt
	if track.URLRefreshedAt != nil {
		base = *track.URLRefreshedAt
	}
	return s.now().Sub(base) > s.refreshAfter
}

// refreshTrack re-issues both signed URLs for the track's stored keys
// and writes them back to the catalog, updating the given copy in place
// on success.
func (s *Service) refreshTrack(ctx context.Context, track *model.Track) {
	audioURL, imageURL, err := s.signBoth(ctx, track)
	if err != nil {
		logger.Warn("failed to refresh signed urls",
			logger.String("trackId", track.ID),
			logger.ErrorField(err))
		return
	}

	refreshedAt := s.now()
	if !s.catalog.UpdateBackupURLs(track.ID, audioURL, imageURL, refreshedAt) {
		// Track was deleted while we were signing.
		return
	}
	track.BackupAudioURL = &audioURL
	track.BackupImageURL = &imageURL
	track.URLRefreshedAt = &refreshedAt
}

// RefreshURLs is the explicit per-track administrative refresh. It
// re-issues both signed URLs unconditionally, which makes repeated calls
// idempotent in effect, and returns the updated record.
func (s *Service) RefreshURLs(ctx context.Context, id string) (*model.Track, error) {
	track, ok := s.catalog.Find(id)
	if !ok {
		return nil, ErrTrackNotFound
	}
	if s.backup == nil {
		return nil, ErrBackupDisabled
	}

	audioURL, imageURL, err := s.signBoth(ctx, &track)
	if err != nil {
		return nil, err
	}

	refreshedAt := s.now()
	if !s.catalog.UpdateBackupURLs(id, audioURL, imageURL, refreshedAt) {
		return nil, ErrTrackNotFound
	}
	track.BackupAudioURL = &audioURL
	track.BackupImageURL = &imageURL
	track.URLRefreshedAt = &refreshedAt
	return &track, nil
}

// signBoth issues fresh signed URLs for a track's audio and image keys
// concurrently.
func (s *Service) signBoth(ctx context.Context, track *model.Track) (string, string, error) {
	var (
		wg                 sync.WaitGroup
		audioURL, imageURL string
		audioErr, imageErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		audioURL, audioErr = s.backup.SignedURL(ctx, track.BackupAudioKey)
	}()
	go func() {
		defer wg.Done()
		imageURL, imageErr = s.backup.SignedURL(ctx, track.BackupImageKey)
	}()
	wg.Wait()

	if audioErr != nil {
		return "", "", audioErr
	}
	if imageErr != nil {
		return "", "", imageErr
	}
	return audioURL, imageURL, nil
}

// SetRefreshAfter overrides the staleness threshold. Intended for tests
// and operational tuning.
func (s *Service) SetRefreshAfter(d time.Duration) {
	s.refreshAfter = d
}
