package delivery

import (
	"fmt"
	"os"
	"path/filepath"

	"catalog/feedsync/internal/domain"

	log "github.com/sirupsen/logrus"
)

// LocalWriter saves the document to a well-known local file when the upload fails.
type LocalWriter struct {
	dir      string
	filename string
}

// NewLocalWriter writes filename under dir, or under the user's Desktop when dir is empty.
func NewLocalWriter(dir, filename string) *LocalWriter {
	return &LocalWriter{dir: dir, filename: filename}
}

// Path resolves the destination file.
func (w *LocalWriter) Path() (string, error) {
	dir := w.dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, "Desktop")
	}
	return filepath.Join(dir, w.filename), nil
}

// Write stores document and returns the path written. Failures are *domain.LocalWriteError.
func (w *LocalWriter) Write(document string) (string, error) {
	path, err := w.Path()
	if err != nil {
		return "", &domain.LocalWriteError{Path: w.filename, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", &domain.LocalWriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
		return "", &domain.LocalWriteError{Path: path, Err: err}
	}

	log.Infof("💾 Saved %d bytes to %s", len(document), path)
	return path, nil
}
