package repository

import (
	"strings"
	"sync"
	"time"

	"wavecrate/model"
)

// CategoryAll matches every record when passed as a listing filter.
const CategoryAll = "all"

// CatalogRepository defines the interface for catalog data operations.
// The in-memory implementation below is the only datastore in this
// service; swapping in a database-backed implementation only requires
// satisfying this interface.
type CatalogRepository interface {
	Insert(track *model.Track)
	List(category string) []model.Track
	Find(id string) (model.Track, bool)
	Remove(id string) (model.Track, bool)
	UpdateBackupURLs(id, audioURL, imageURL string, refreshedAt time.Time) bool
	Len() int
}

// memoryCatalog implements CatalogRepository over a plain ordered slice.
// Lookups are linear scans; the catalog is not expected to grow beyond
// what a single process can comfortably hold, and persistence is an
// explicit non-goal. State is lost on restart.
type memoryCatalog struct {
	mu     sync.RWMutex
	tracks []*model.Track
}

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() CatalogRepository {
	return &memoryCatalog{}
}

// Insert appends a track, preserving insertion order for listings.
func (c *memoryCatalog) Insert(track *model.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracks = append(c.tracks, track)
}

// List returns copies of all tracks in insertion order. A category of
// "all" or "" returns everything; any other value is matched exactly
// against the stored lowercase category.
func (c *memoryCatalog) List(category string) []model.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()

	category = strings.ToLower(category)
	all := category == "" || category == CategoryAll

	out := make([]model.Track, 0, len(c.tracks))
	for _, t := range c.tracks {
		if all || t.Category == category {
			out = append(out, *t)
		}
	}
	return out
}

// Find returns a copy of the track with the given id.
func (c *memoryCatalog) Find(id string) (model.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, t := range c.tracks {
		if t.ID == id {
			return *t, true
		}
	}
	return model.Track{}, false
}

// Remove deletes the track with the given id and returns a copy of it so
// the caller can clean up its backing files.
func (c *memoryCatalog) Remove(id string) (model.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, t := range c.tracks {
		if t.ID == id {
			removed := *t
			c.tracks = append(c.tracks[:i], c.tracks[i+1:]...)
			return removed, true
		}
	}
	return model.Track{}, false
}

// UpdateBackupURLs replaces the two signed backup URLs and stamps the
// refresh time. Concurrent refreshes of the same record are
// last-write-wins; that weak consistency is documented behavior.
func (c *memoryCatalog) UpdateBackupURLs(id, audioURL, imageURL string, refreshedAt time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.tracks {
		if t.ID == id {
			t.BackupAudioURL = &audioURL
			t.BackupImageURL = &imageURL
			at := refreshedAt
			t.URLRefreshedAt = &at
			return true
		}
	}
	return false
}

// Len returns the number of tracks in the catalog.
func (c *memoryCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tracks)
}
