// Package store manages the local directory holding uploaded ULog files and
// the metadata catalog describing them.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogExt is the only file extension accepted into the store.
const LogExt = ".ulg"

type (
	// FileInfo describes one stored log file.
	FileInfo struct {
		Name    string    `json:"name"`
		Size    int64     `json:"size"`
		ModTime time.Time `json:"mod_time"`
	}

	// Store manages the upload directory. The directory is created when
	// absent and never touched beyond adding files when it exists.
	Store struct {
		dir string
	}
)

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %v", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// List returns the stored log files sorted by name.
func (s *Store) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list store directory: %v", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), LogExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Save writes an uploaded log under the given name.
func (s *Store) Save(name string, r io.Reader) (FileInfo, error) {
	if err := ValidateName(name); err != nil {
		return FileInfo{}, err
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to create %s: %v", name, err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return FileInfo{}, fmt.Errorf("failed to write %s: %v", name, err)
	}
	return FileInfo{Name: name, Size: n, ModTime: time.Now()}, nil
}

// Path resolves a stored file name to its path on disk.
func (s *Store) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Stat returns the file info of one stored log.
func (s *Store) Stat(name string) (FileInfo, error) {
	path, err := s.Path(name)
	if err != nil {
		return FileInfo{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("log %s not found: %v", name, err)
	}
	return FileInfo{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Read loads the raw bytes of one stored log.
func (s *Store) Read(name string) ([]byte, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read log %s: %v", name, err)
	}
	return data, nil
}

// ValidateName rejects traversal attempts and anything that is not a .ulg
// file. Callers accepting user-supplied names should check it up front.
func ValidateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("invalid log file name %q", name)
	}
	if !strings.HasSuffix(name, LogExt) {
		return fmt.Errorf("log file name %q must end with %s", name, LogExt)
	}
	return nil
}
