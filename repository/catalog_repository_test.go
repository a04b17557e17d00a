package repository

import (
	"testing"
	"time"

	"wavecrate/model"
)

func newTrack(id, name, category string) *model.Track {
	return &model.Track{
		ID:         id,
		Name:       name,
		Artist:     "artist",
		Category:   category,
		AudioURL:   "/uploads/audio/" + id + ".mp3",
		ImageURL:   "/uploads/images/" + id + ".jpg",
		UploadedAt: time.Now(),
	}
}

func TestListPreservesInsertionOrder(t *testing.T) {
	c := NewMemoryCatalog()
	c.Insert(newTrack("a", "first", "pop"))
	c.Insert(newTrack("b", "second", "rock"))
	c.Insert(newTrack("c", "third", "pop"))

	got := c.List("")
	if len(got) != 3 {
		t.Fatalf("List() returned %d tracks, want 3", len(got))
	}
	for i, id := range []string{"a", "b", "c"} {
		if got[i].ID != id {
			t.Errorf("List()[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}

	if all := c.List(CategoryAll); len(all) != 3 {
		t.Errorf("List(all) returned %d tracks, want 3", len(all))
	}
}

func TestListFiltersByCategory(t *testing.T) {
	c := NewMemoryCatalog()
	c.Insert(newTrack("a", "first", "pop"))
	c.Insert(newTrack("b", "second", "rock"))
	c.Insert(newTrack("c", "third", "pop"))

	pop := c.List("pop")
	if len(pop) != 2 {
		t.Fatalf("List(pop) returned %d tracks, want 2", len(pop))
	}
	for _, tr := range pop {
		if tr.Category != "pop" {
			t.Errorf("List(pop) returned category %q", tr.Category)
		}
	}

	// Filter input is normalized; stored categories are already lowercase.
	if rock := c.List("Rock"); len(rock) != 1 || rock[0].ID != "b" {
		t.Errorf("List(Rock) = %v, want the single rock track", rock)
	}

	if none := c.List("jazz"); len(none) != 0 {
		t.Errorf("List(jazz) returned %d tracks, want 0", len(none))
	}
}

func TestFindAndRemove(t *testing.T) {
	c := NewMemoryCatalog()
	c.Insert(newTrack("a", "first", "pop"))
	c.Insert(newTrack("b", "second", "rock"))

	if _, ok := c.Find("a"); !ok {
		t.Fatal("Find(a) = not found, want found")
	}
	if _, ok := c.Find("missing"); ok {
		t.Fatal("Find(missing) = found, want not found")
	}

	removed, ok := c.Remove("a")
	if !ok || removed.ID != "a" {
		t.Fatalf("Remove(a) = %v, %v", removed, ok)
	}
	if _, ok := c.Remove("a"); ok {
		t.Fatal("second Remove(a) succeeded, want not found")
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d after removal, want 1", c.Len())
	}
	if got := c.List(""); len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("List() after removal = %v", got)
	}
}

func TestUpdateBackupURLs(t *testing.T) {
	c := NewMemoryCatalog()
	c.Insert(newTrack("a", "first", "pop"))

	at := time.Now()
	if !c.UpdateBackupURLs("a", "https://backup/audio", "https://backup/image", at) {
		t.Fatal("UpdateBackupURLs(a) = false, want true")
	}
	if c.UpdateBackupURLs("missing", "x", "y", at) {
		t.Fatal("UpdateBackupURLs(missing) = true, want false")
	}

	got, _ := c.Find("a")
	if got.BackupAudioURL == nil || *got.BackupAudioURL != "https://backup/audio" {
		t.Errorf("BackupAudioURL = %v", got.BackupAudioURL)
	}
	if got.BackupImageURL == nil || *got.BackupImageURL != "https://backup/image" {
		t.Errorf("BackupImageURL = %v", got.BackupImageURL)
	}
	if got.URLRefreshedAt == nil || !got.URLRefreshedAt.Equal(at) {
		t.Errorf("URLRefreshedAt = %v, want %v", got.URLRefreshedAt, at)
	}
}

func TestListReturnsCopies(t *testing.T) {
	c := NewMemoryCatalog()
	c.Insert(newTrack("a", "first", "pop"))

	got := c.List("")
	got[0].Name = "mutated"

	stored, _ := c.Find("a")
	if stored.Name != "first" {
		t.Fatalf("stored name = %q, catalog leaked a live reference", stored.Name)
	}
}
