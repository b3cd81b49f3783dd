// Package storage manages the filesystem areas holding uploaded reference
// photos and generated results. File names are derived from task IDs so a
// task's artifacts can always be located (and deleted) without extra
// bookkeeping.
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Common storage errors.
var (
	// ErrWrite is returned when image bytes cannot be written to disk.
	ErrWrite = errors.New("failed to write image")

	// ErrRead is returned when image bytes cannot be read from disk.
	ErrRead = errors.New("failed to read image")
)

// ImageStore is the filesystem-backed home for task images.
type ImageStore struct {
	uploadsDir   string
	generatedDir string
	logger       *slog.Logger
}

// NewImageStore creates an ImageStore rooted at the given directories,
// creating them if missing.
func NewImageStore(uploadsDir, generatedDir string, logger *slog.Logger) (*ImageStore, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	for _, dir := range []string{uploadsDir, generatedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}

	return &ImageStore{
		uploadsDir:   uploadsDir,
		generatedDir: generatedDir,
		logger:       logger,
	}, nil
}

// UploadName derives the stored file name for an uploaded image from the
// task ID, preserving the original extension when it looks like one.
func UploadName(id uuid.UUID, originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
	default:
		ext = ".jpg"
	}
	return id.String() + ext
}

// GeneratedName derives the stored file name for a generated result.
func GeneratedName(id uuid.UUID) string {
	return id.String() + "_styled.png"
}

// UploadPath returns the absolute path of a stored upload.
func (s *ImageStore) UploadPath(name string) string {
	return filepath.Join(s.uploadsDir, filepath.Base(name))
}

// GeneratedPath returns the absolute path of a stored generated image.
func (s *ImageStore) GeneratedPath(name string) string {
	return filepath.Join(s.generatedDir, filepath.Base(name))
}

// WriteUpload stores uploaded image bytes under the given name.
func (s *ImageStore) WriteUpload(name string, data []byte) error {
	if err := os.WriteFile(s.UploadPath(name), data, 0o644); err != nil {
		return fmt.Errorf("%w: upload %s: %v", ErrWrite, name, err)
	}
	return nil
}

// ReadUpload returns the bytes of a stored upload.
func (s *ImageStore) ReadUpload(name string) ([]byte, error) {
	data, err := os.ReadFile(s.UploadPath(name))
	if err != nil {
		return nil, fmt.Errorf("%w: upload %s: %v", ErrRead, name, err)
	}
	return data, nil
}

// WriteGenerated stores generated image bytes under the given name.
func (s *ImageStore) WriteGenerated(name string, data []byte) error {
	if err := os.WriteFile(s.GeneratedPath(name), data, 0o644); err != nil {
		return fmt.Errorf("%w: generated %s: %v", ErrWrite, name, err)
	}
	return nil
}

// ReadGenerated returns the bytes of a stored generated image.
func (s *ImageStore) ReadGenerated(name string) ([]byte, error) {
	data, err := os.ReadFile(s.GeneratedPath(name))
	if err != nil {
		return nil, fmt.Errorf("%w: generated %s: %v", ErrRead, name, err)
	}
	return data, nil
}

// RemoveUpload deletes a stored upload. Best-effort: a failure is logged
// and swallowed, a missing file is not an error.
func (s *ImageStore) RemoveUpload(name string) {
	s.remove(s.UploadPath(name))
}

// RemoveGenerated deletes a stored generated image. Best-effort, like
// RemoveUpload. Remote URLs recorded as generated references are ignored.
func (s *ImageStore) RemoveGenerated(name string) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return
	}
	s.remove(s.GeneratedPath(name))
}

func (s *ImageStore) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove image file",
			"path", path,
			"error", err)
	}
}
