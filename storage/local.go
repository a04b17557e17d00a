package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PublicPrefix is the URL prefix under which the primary store is served.
const PublicPrefix = "/uploads/"

// FileStore is the primary file store: the authoritative copy of all
// uploaded media, laid out as <base>/audio and <base>/images on the local
// filesystem.
type FileStore struct {
	baseDir  string
	audioDir string
	imageDir string
}

// NewFileStore creates the store rooted at baseDir, creating the audio
// and image subdirectories if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	s := &FileStore{
		baseDir:  baseDir,
		audioDir: filepath.Join(baseDir, "audio"),
		imageDir: filepath.Join(baseDir, "images"),
	}
	for _, dir := range []string{s.baseDir, s.audioDir, s.imageDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return s, nil
}

// BaseDir returns the store's root directory.
func (s *FileStore) BaseDir() string {
	return s.baseDir
}

// AudioDir returns the audio subdirectory.
func (s *FileStore) AudioDir() string {
	return s.audioDir
}

// ImageDir returns the image subdirectory.
func (s *FileStore) ImageDir() string {
	return s.imageDir
}

// SaveAudio writes an audio payload and returns its public path.
func (s *FileStore) SaveAudio(filename string, data []byte) (string, error) {
	return s.save(s.audioDir, "audio", filename, data)
}

// SaveImage writes a cover image payload and returns its public path.
func (s *FileStore) SaveImage(filename string, data []byte) (string, error) {
	return s.save(s.imageDir, "images", filename, data)
}

func (s *FileStore) save(dir, folder, filename string, data []byte) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return PublicPrefix + folder + "/" + filename, nil
}

// Resolve maps a public /uploads/ path back to a filesystem path.
func (s *FileStore) Resolve(publicPath string) (string, error) {
	rel, ok := strings.CutPrefix(publicPath, PublicPrefix)
	if !ok {
		return "", fmt.Errorf("path %q is not under %s", publicPath, PublicPrefix)
	}
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("path %q escapes the upload directory", publicPath)
	}
	return filepath.Join(s.baseDir, rel), nil
}

// Remove deletes the file behind a public path. A file that is already
// gone is not an error.
func (s *FileStore) Remove(publicPath string) error {
	path, err := s.Resolve(publicPath)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// Exists reports whether the file behind a public path is present.
func (s *FileStore) Exists(publicPath string) bool {
	path, err := s.Resolve(publicPath)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
