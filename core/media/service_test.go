package media

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"wavecrate/core/stats"
	"wavecrate/model"
	"wavecrate/repository"
	"wavecrate/storage"

	"github.com/zeebo/blake3"
)

// fakeBackup is a recording stub for the object-storage backup.
type fakeBackup struct {
	mu        sync.Mutex
	fail      bool
	objects   map[string][]byte
	signCalls int
	removed   []string
}

func newFakeBackup() *fakeBackup {
	return &fakeBackup{objects: map[string][]byte{}}
}

func (f *fakeBackup) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("backup unreachable")
	}
	f.objects[key] = data
	return f.signLocked(key), nil
}

func (f *fakeBackup) SignedURL(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("backup unreachable")
	}
	return f.signLocked(key), nil
}

func (f *fakeBackup) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("backup unreachable")
	}
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

// signLocked issues a distinct URL per call so refreshes are observable.
func (f *fakeBackup) signLocked(key string) string {
	f.signCalls++
	return fmt.Sprintf("https://backup.example/%s?sig=%d", key, f.signCalls)
}

func (f *fakeBackup) signedCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signCalls
}

func newTestService(t *testing.T, backup storage.BackupStorage) (*Service, repository.CatalogRepository, *storage.FileStore) {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	catalog := repository.NewMemoryCatalog()
	svc := NewService(catalog, files, backup, stats.NewCounters())
	return svc, catalog, files
}

func validUpload() UploadRequest {
	return UploadRequest{
		Name:     "Test",
		Artist:   "Artist",
		Category: "Pop",
		Audio:    []byte("fake mp3 bytes"),
		Image:    []byte("fake jpg bytes"),
	}
}

func TestUploadStoresLocalAndBackup(t *testing.T) {
	backup := newFakeBackup()
	svc, catalog, files := newTestService(t, backup)

	track, status, err := svc.Upload(context.Background(), validUpload())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if status != BackupStored {
		t.Fatalf("backup status = %v, want %v", status, BackupStored)
	}
	if track.ID == "" {
		t.Fatal("empty track id")
	}
	if track.Category != "pop" {
		t.Fatalf("category = %q, want lowercase pop", track.Category)
	}

	// Local copies are byte-identical to the payloads.
	for publicPath, want := range map[string]string{
		track.AudioURL: "fake mp3 bytes",
		track.ImageURL: "fake jpg bytes",
	} {
		diskPath, err := files.Resolve(publicPath)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", publicPath, err)
		}
		got, err := os.ReadFile(diskPath)
		if err != nil {
			t.Fatalf("ReadFile(%q): %v", diskPath, err)
		}
		if string(got) != want {
			t.Fatalf("local copy %q differs from payload", publicPath)
		}
	}

	if !track.HasBackup() {
		t.Fatal("backup URLs missing after successful backup")
	}
	if track.BackupAudioKey != "songs/audio/"+track.ID+".mp3" {
		t.Fatalf("audio key = %q", track.BackupAudioKey)
	}
	if track.BackupImageKey != "songs/images/"+track.ID+".jpg" {
		t.Fatalf("image key = %q", track.BackupImageKey)
	}
	if _, ok := backup.objects[track.BackupAudioKey]; !ok {
		t.Fatal("audio payload never reached the backup")
	}

	sum := blake3.Sum256([]byte("fake mp3 bytes"))
	if track.AudioChecksum != hex.EncodeToString(sum[:]) {
		t.Fatalf("audio checksum = %q", track.AudioChecksum)
	}

	if catalog.Len() != 1 {
		t.Fatalf("catalog size = %d, want 1", catalog.Len())
	}
}

func TestUploadSucceedsWhenBackupUnreachable(t *testing.T) {
	backup := newFakeBackup()
	backup.fail = true
	svc, catalog, files := newTestService(t, backup)

	track, status, err := svc.Upload(context.Background(), validUpload())
	if err != nil {
		t.Fatalf("Upload with unreachable backup failed: %v", err)
	}
	if status != BackupFailed {
		t.Fatalf("backup status = %v, want %v", status, BackupFailed)
	}
	if track.BackupAudioURL != nil || track.BackupImageURL != nil {
		t.Fatal("backup URLs set although the backup failed")
	}
	if !files.Exists(track.AudioURL) || !files.Exists(track.ImageURL) {
		t.Fatal("local copies missing")
	}
	if catalog.Len() != 1 {
		t.Fatalf("catalog size = %d, want 1", catalog.Len())
	}
}

func TestUploadWithoutBackupConfigured(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	track, status, err := svc.Upload(context.Background(), validUpload())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if status != BackupDisabled {
		t.Fatalf("backup status = %v, want %v", status, BackupDisabled)
	}
	if track.HasBackup() {
		t.Fatal("backup URLs set without backup storage")
	}
}

func TestUploadValidation(t *testing.T) {
	svc, catalog, _ := newTestService(t, newFakeBackup())

	for name, mutate := range map[string]func(*UploadRequest){
		"missing name":     func(r *UploadRequest) { r.Name = " " },
		"missing artist":   func(r *UploadRequest) { r.Artist = "" },
		"missing category": func(r *UploadRequest) { r.Category = "" },
		"missing audio":    func(r *UploadRequest) { r.Audio = nil },
		"missing image":    func(r *UploadRequest) { r.Image = nil },
	} {
		req := validUpload()
		mutate(&req)
		_, _, err := svc.Upload(context.Background(), req)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("%s: error = %v, want ValidationError", name, err)
		}
	}
	if catalog.Len() != 0 {
		t.Fatalf("catalog size = %d after rejected uploads, want 0", catalog.Len())
	}
}

func TestDeleteRemovesEverything(t *testing.T) {
	backup := newFakeBackup()
	svc, catalog, files := newTestService(t, backup)

	track, _, err := svc.Upload(context.Background(), validUpload())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.Delete(context.Background(), track.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if catalog.Len() != 0 {
		t.Fatal("track still listed after delete")
	}
	if files.Exists(track.AudioURL) || files.Exists(track.ImageURL) {
		t.Fatal("local files survived the delete")
	}
	if len(backup.removed) != 2 {
		t.Fatalf("backup removals = %v, want both keys", backup.removed)
	}

	if err := svc.Delete(context.Background(), track.ID); !errors.Is(err, ErrTrackNotFound) {
		t.Fatalf("second Delete = %v, want ErrTrackNotFound", err)
	}
}

func TestDeleteSkipsBackupForLocalOnlyTracks(t *testing.T) {
	backup := newFakeBackup()
	backup.fail = true
	svc, _, _ := newTestService(t, backup)

	track, _, err := svc.Upload(context.Background(), validUpload())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	backup.fail = false
	if err := svc.Delete(context.Background(), track.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(backup.removed) != 0 {
		t.Fatalf("backup removals = %v for a local-only track, want none", backup.removed)
	}
}

func TestDownloadCountsAndResolves(t *testing.T) {
	svc, _, _ := newTestService(t, newFakeBackup())

	track, _, err := svc.Upload(context.Background(), validUpload())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	// Unknown ids still count as download attempts but return not-found.
	if _, err := svc.Download("missing"); !errors.Is(err, ErrTrackNotFound) {
		t.Fatalf("Download(missing) = %v, want ErrTrackNotFound", err)
	}

	url, err := svc.Download(track.ID)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if url != track.AudioURL {
		t.Fatalf("download URL = %q, want %q", url, track.AudioURL)
	}
	if got := svc.counters.Downloads(); got != 2 {
		t.Fatalf("download counter = %d, want 2", got)
	}

	svc.RecordPlay()
	svc.RecordPlay()
	if got := svc.counters.Plays(); got != 2 {
		t.Fatalf("play counter = %d, want 2", got)
	}
}

// insertBackedTrack seeds the catalog directly so timestamps can be
// controlled.
func insertBackedTrack(catalog repository.CatalogRepository, id string, uploadedAt time.Time, refreshedAt *time.Time) {
	audioURL := "https://backup.example/songs/audio/" + id + ".mp3?sig=old"
	imageURL := "https://backup.example/songs/images/" + id + ".jpg?sig=old"
	catalog.Insert(&model.Track{
		ID:             id,
		Name:           "seeded",
		Artist:         "artist",
		Category:       "pop",
		AudioURL:       "/uploads/audio/" + id + ".mp3",
		ImageURL:       "/uploads/images/" + id + ".jpg",
		BackupAudioURL: &audioURL,
		BackupImageURL: &imageURL,
		BackupAudioKey: "songs/audio/" + id + ".mp3",
		BackupImageKey: "songs/images/" + id + ".jpg",
		UploadedAt:     uploadedAt,
		URLRefreshedAt: refreshedAt,
	})
}

func TestListRefreshesStaleURLs(t *testing.T) {
	backup := newFakeBackup()
	svc, catalog, _ := newTestService(t, backup)

	insertBackedTrack(catalog, "stale", time.Now().Add(-7*24*time.Hour), nil)
	insertBackedTrack(catalog, "fresh", time.Now().Add(-time.Hour), nil)

	tracks := svc.List(context.Background(), "")
	if len(tracks) != 2 {
		t.Fatalf("List returned %d tracks, want 2", len(tracks))
	}

	// Only the stale record needed two fresh signed URLs.
	if got := backup.signedCalls(); got != 2 {
		t.Fatalf("signed URL calls = %d, want 2", got)
	}

	stale, _ := catalog.Find("stale")
	if stale.URLRefreshedAt == nil {
		t.Fatal("stale track's URLRefreshedAt not set")
	}
	if stale.BackupAudioURL == nil || *stale.BackupAudioURL == "https://backup.example/songs/audio/stale.mp3?sig=old" {
		t.Fatal("stale track's audio URL was not replaced")
	}

	fresh, _ := catalog.Find("fresh")
	if fresh.URLRefreshedAt != nil {
		t.Fatal("fresh track was refreshed")
	}
}

func TestListStalenessMeasuredFromLastRefresh(t *testing.T) {
	backup := newFakeBackup()
	svc, catalog, _ := newTestService(t, backup)

	// Uploaded long ago but refreshed an hour ago: not stale.
	recent := time.Now().Add(-time.Hour)
	insertBackedTrack(catalog, "refreshed", time.Now().Add(-30*24*time.Hour), &recent)

	svc.List(context.Background(), "")
	if got := backup.signedCalls(); got != 0 {
		t.Fatalf("signed URL calls = %d, want 0", got)
	}
}

func TestListSkipsLocalOnlyTracks(t *testing.T) {
	backup := newFakeBackup()
	svc, catalog, _ := newTestService(t, backup)

	catalog.Insert(&model.Track{
		ID:         "local-only",
		Name:       "seeded",
		Artist:     "artist",
		Category:   "pop",
		AudioURL:   "/uploads/audio/local-only.mp3",
		ImageURL:   "/uploads/images/local-only.jpg",
		UploadedAt: time.Now().Add(-30 * 24 * time.Hour),
	})

	svc.List(context.Background(), "")
	if got := backup.signedCalls(); got != 0 {
		t.Fatalf("signed URL calls = %d for a local-only track, want 0", got)
	}
}

func TestRefreshURLsExplicit(t *testing.T) {
	backup := newFakeBackup()
	svc, catalog, _ := newTestService(t, backup)

	if _, err := svc.RefreshURLs(context.Background(), "missing"); !errors.Is(err, ErrTrackNotFound) {
		t.Fatalf("RefreshURLs(missing) = %v, want ErrTrackNotFound", err)
	}

	insertBackedTrack(catalog, "a", time.Now(), nil)

	first, err := svc.RefreshURLs(context.Background(), "a")
	if err != nil {
		t.Fatalf("RefreshURLs: %v", err)
	}
	if first.URLRefreshedAt == nil || first.BackupAudioURL == nil {
		t.Fatal("refresh did not update the record")
	}

	// Repeated calls just re-issue; both succeed and produce new URLs.
	second, err := svc.RefreshURLs(context.Background(), "a")
	if err != nil {
		t.Fatalf("second RefreshURLs: %v", err)
	}
	if *second.BackupAudioURL == *first.BackupAudioURL {
		t.Fatal("second refresh returned the same signed URL")
	}
}

func TestRefreshURLsWithoutBackup(t *testing.T) {
	svc, catalog, _ := newTestService(t, nil)
	insertBackedTrack(catalog, "a", time.Now(), nil)

	if _, err := svc.RefreshURLs(context.Background(), "a"); !errors.Is(err, ErrBackupDisabled) {
		t.Fatalf("RefreshURLs = %v, want ErrBackupDisabled", err)
	}
}
