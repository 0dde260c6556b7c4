// Package audio manages generated audio files on the local filesystem.
//
// Files live under a base directory split into temp/ and permanent/
// subdirectories; temp files are subject to age-based cleanup.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Directory and cleanup defaults.
const (
	// DefaultDirPermissions defines the default permissions for audio directories.
	DefaultDirPermissions = 0755
	// DefaultFilePermissions defines the default permissions for audio files.
	DefaultFilePermissions = 0644
	// DefaultCleanupMaxAge is how old a temp file must be before cleanup removes it.
	DefaultCleanupMaxAge = 24 * time.Hour
)

// ErrNotFound indicates the requested audio file does not exist.
var ErrNotFound = errors.New("audio file not found")

// audioExtensions lists the file extensions the manager serves.
var audioExtensions = map[string]string{
	".wav": "audio/wav",
	".mp3": "audio/mpeg",
	".ogg": "audio/ogg",
}

// FileInfo describes a stored audio file.
type FileInfo struct {
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	URL        string    `json:"url"`
	SizeBytes  int64     `json:"size_bytes"`
	SizeKB     float64   `json:"size_kb"`
	ModifiedAt time.Time `json:"modified_at"`
	Permanent  bool      `json:"permanent"`
}

// Manager stores and serves audio files under a base directory.
type Manager struct {
	tempDir      string
	permanentDir string
}

// NewManager creates a manager rooted at baseDir, creating the temp and
// permanent subdirectories if needed.
func NewManager(baseDir string) (*Manager, error) {
	m := &Manager{
		tempDir:      filepath.Join(baseDir, "temp"),
		permanentDir: filepath.Join(baseDir, "permanent"),
	}
	for _, dir := range []string{m.tempDir, m.permanentDir} {
		if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
			slog.Error("Failed to create audio directory", "error", err, "dir", dir)
			return nil, fmt.Errorf("failed to create audio directory: %w", err)
		}
	}
	return m, nil
}

// Save writes audio data and returns its metadata. An empty filename is
// rejected; the format extension is appended when missing.
func (m *Manager) Save(data []byte, filename string, permanent bool, format string) (FileInfo, error) {
	if len(data) == 0 {
		return FileInfo{}, fmt.Errorf("no audio data provided")
	}
	if filename == "" {
		return FileInfo{}, fmt.Errorf("no filename provided")
	}
	if !strings.HasSuffix(filename, "."+format) {
		filename = filename + "." + format
	}
	if err := validateFilename(filename); err != nil {
		return FileInfo{}, err
	}

	dir := m.tempDir
	if permanent {
		dir = m.permanentDir
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, DefaultFilePermissions); err != nil {
		slog.Error("Manager.Save: failed to write audio file", "error", err, "path", path)
		return FileInfo{}, fmt.Errorf("failed to write audio file: %w", err)
	}
	slog.Debug("Manager.Save: audio file written", "filename", filename, "permanent", permanent, "size_bytes", len(data))
	return FileInfo{
		Filename:   filename,
		Path:       path,
		URL:        "/api/audio/" + filename,
		SizeBytes:  int64(len(data)),
		SizeKB:     roundKB(int64(len(data))),
		ModifiedAt: time.Now(),
		Permanent:  permanent,
	}, nil
}

// Get returns the raw bytes of the named file, checking the temp directory
// first and the permanent directory second.
func (m *Manager) Get(filename string) ([]byte, error) {
	if err := validateFilename(filename); err != nil {
		return nil, err
	}
	for _, dir := range []string{m.tempDir, m.permanentDir} {
		data, err := os.ReadFile(filepath.Join(dir, filename))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read audio file: %w", err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
}

// Info returns metadata for the named file.
func (m *Manager) Info(filename string) (FileInfo, error) {
	if err := validateFilename(filename); err != nil {
		return FileInfo{}, err
	}
	for _, dir := range []string{m.tempDir, m.permanentDir} {
		path := filepath.Join(dir, filename)
		stat, err := os.Stat(path)
		if err == nil {
			return FileInfo{
				Filename:   filename,
				Path:       path,
				URL:        "/api/audio/" + filename,
				SizeBytes:  stat.Size(),
				SizeKB:     roundKB(stat.Size()),
				ModifiedAt: stat.ModTime(),
				Permanent:  dir == m.permanentDir,
			}, nil
		}
		if !os.IsNotExist(err) {
			return FileInfo{}, fmt.Errorf("failed to stat audio file: %w", err)
		}
	}
	return FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, filename)
}

// List returns metadata for all stored audio files, newest first.
func (m *Manager) List(permanentOnly bool) ([]FileInfo, error) {
	dirs := []string{m.tempDir, m.permanentDir}
	if permanentOnly {
		dirs = []string{m.permanentDir}
	}
	var files []FileInfo
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to list audio directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, ok := audioExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
				continue
			}
			stat, err := entry.Info()
			if err != nil {
				continue
			}
			files = append(files, FileInfo{
				Filename:   entry.Name(),
				Path:       filepath.Join(dir, entry.Name()),
				URL:        "/api/audio/" + entry.Name(),
				SizeBytes:  stat.Size(),
				SizeKB:     roundKB(stat.Size()),
				ModifiedAt: stat.ModTime(),
				Permanent:  dir == m.permanentDir,
			})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ModifiedAt.After(files[j].ModifiedAt) })
	return files, nil
}

// Delete removes the named file from whichever directory holds it.
func (m *Manager) Delete(filename string) error {
	if err := validateFilename(filename); err != nil {
		return err
	}
	for _, dir := range []string{m.tempDir, m.permanentDir} {
		path := filepath.Join(dir, filename)
		err := os.Remove(path)
		if err == nil {
			slog.Info("Manager.Delete: audio file deleted", "filename", filename)
			return nil
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete audio file: %w", err)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, filename)
}

// CleanupTemp deletes temp files older than maxAge and returns how many were
// removed. A non-positive maxAge uses DefaultCleanupMaxAge.
func (m *Manager) CleanupTemp(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = DefaultCleanupMaxAge
	}
	cutoff := time.Now().Add(-maxAge)
	entries, err := os.ReadDir(m.tempDir)
	if err != nil {
		return 0, fmt.Errorf("failed to list temp audio directory: %w", err)
	}
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := audioExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		stat, err := entry.Info()
		if err != nil {
			continue
		}
		if stat.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(m.tempDir, entry.Name())); err == nil {
				deleted++
			}
		}
	}
	slog.Debug("Manager.CleanupTemp: cleanup finished", "deleted", deleted, "max_age", maxAge)
	return deleted, nil
}

// MIMEType returns the content type for a filename based on its extension.
func MIMEType(filename string) string {
	if mime, ok := audioExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// validateFilename rejects names that could escape the audio directories.
func validateFilename(filename string) error {
	if filename == "" || strings.ContainsAny(filename, "/\\") || filename != filepath.Base(filename) {
		return fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return nil
}

func roundKB(size int64) float64 {
	return math.Round(float64(size)/1024*100) / 100
}
