package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ClipStore persists audio clips and transient pipeline artifacts on disk
// under a single base directory, the one served to player clients.
type ClipStore struct {
	baseDir string
}

// NewClipStore ensures the base directory exists and returns a handle.
func NewClipStore(baseDir string) (*ClipStore, error) {
	if baseDir == "" {
		baseDir = "./temp"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create clip directory: %w", err)
	}
	return &ClipStore{baseDir: baseDir}, nil
}

// Save writes the given bytes to the provided relative path under the base dir.
func (s *ClipStore) Save(filename string, data []byte) (string, error) {
	path := s.resolve(filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write clip file: %w", err)
	}
	return filename, nil
}

// SaveStream copies from reader into the target file path. Used by the
// upload passthrough.
func (s *ClipStore) SaveStream(filename string, r io.Reader) (string, error) {
	path := s.resolve(filename)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create clip file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write clip stream: %w", err)
	}
	return filename, nil
}

// Exists reports whether the named file is present.
func (s *ClipStore) Exists(filename string) bool {
	_, err := os.Stat(s.resolve(filename))
	return err == nil
}

// Delete removes a stored file if present. A missing file is not an error:
// metadata consistency outranks file presence during cascades.
func (s *ClipStore) Delete(filename string) error {
	path := s.resolve(filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete clip file: %w", err)
	}
	return nil
}

// CleanupTransients removes stale transient pipeline artifacts (text- and
// raw- prefixed files) older than the provided TTL and returns deleted
// names. Finished announcement clips are never touched.
func (s *ClipStore) CleanupTransients(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("scan clip directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "text-") && !strings.HasPrefix(name, "raw-") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, name)); err != nil && !os.IsNotExist(err) {
			return deleted, fmt.Errorf("cleanup transient %s: %w", name, err)
		}
		deleted = append(deleted, name)
	}
	return deleted, nil
}

// Path exposes the underlying absolute path for a stored file.
func (s *ClipStore) Path(filename string) string {
	return s.resolve(filename)
}

// Dir returns the base directory, as mounted for static serving.
func (s *ClipStore) Dir() string {
	return s.baseDir
}

func (s *ClipStore) resolve(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(s.baseDir, filepath.Base(filename))
}
