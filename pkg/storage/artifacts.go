package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArtifactStore keeps rendered export files (CSV, PDF) on local disk under a
// single base directory. Paths handed out by the store are always relative to
// that directory so they can be embedded in download tokens.
type ArtifactStore struct {
	baseDir string
}

// NewArtifactStore ensures the base directory exists and returns a store
// rooted at it.
func NewArtifactStore(baseDir string) (*ArtifactStore, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &ArtifactStore{baseDir: baseDir}, nil
}

// Save writes the rendered artifact atomically: the payload lands in a temp
// file first and is renamed into place, so a crashed worker never leaves a
// half-written export behind. Returns the relative path that was stored.
func (s *ArtifactStore) Save(relPath string, data []byte) (string, error) {
	target := s.resolve(relPath)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("prepare artifact directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".export-*")
	if err != nil {
		return "", fmt.Errorf("create artifact temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		os.Remove(tmpName) //nolint:errcheck
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return "", fmt.Errorf("flush artifact: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return "", fmt.Errorf("chmod artifact: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return "", fmt.Errorf("publish artifact: %w", err)
	}
	return relPath, nil
}

// Remove deletes a stored artifact. Missing files are not an error so the
// retention sweep and manual cleanup can race safely.
func (s *ArtifactStore) Remove(relPath string) error {
	if err := os.Remove(s.resolve(relPath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove artifact: %w", err)
	}
	return nil
}

// Sweep deletes artifacts whose modification time is older than maxAge and
// reports how many were removed. A signed download URL is only usable as long
// as the underlying file exists, so the sweep is the retention cutoff.
func (s *ArtifactStore) Sweep(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("sweep artifacts: %w", err)
	}
	return removed, nil
}

// Path resolves a relative artifact path to its absolute location on disk.
func (s *ArtifactStore) Path(relPath string) string {
	return s.resolve(relPath)
}

func (s *ArtifactStore) resolve(relPath string) string {
	if filepath.IsAbs(relPath) {
		return relPath
	}
	return filepath.Join(s.baseDir, relPath)
}
