package model

import "time"

// Track represents one catalog entry: an uploaded song plus its cover art.
// The local paths are authoritative; the backup fields describe the
// advisory copy in object storage and are nil when that copy was never
// written.
type Track struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	Category string `json:"category"` // stored lowercase

	AudioURL string `json:"audioUrl"` // primary copy, served from /uploads/
	ImageURL string `json:"imageUrl"`

	BackupAudioURL *string `json:"backupAudioUrl"` // signed URL, nil if backup failed
	BackupImageURL *string `json:"backupImageUrl"`
	BackupAudioKey string  `json:"backupAudioKey"` // stable object key, survives URL expiry
	BackupImageKey string  `json:"backupImageKey"`

	AudioChecksum string `json:"audioChecksum"` // hex BLAKE3 of the uploaded payload
	ImageChecksum string `json:"imageChecksum"`

	UploadedAt     time.Time  `json:"uploadedAt"`
	URLRefreshedAt *time.Time `json:"urlRefreshedAt,omitempty"`
}

// HasBackup reports whether both backup objects were stored successfully.
func (t *Track) HasBackup() bool {
	return t.BackupAudioURL != nil && t.BackupImageURL != nil
}
