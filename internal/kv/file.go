package kv

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// fileExt is appended to every sanitized key.
const fileExt = ".json"

// FileStore keeps one file per key under Dir.
type FileStore struct {
	Dir string
}

// NewFileStore returns a FileStore rooted at dir. The directory is created
// lazily on the first Save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Path returns the file that holds key.
func (s *FileStore) Path(key string) (string, error) {
	name, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, name+fileExt), nil
}

// Load reads the value stored under key.
func (s *FileStore) Load(key string) ([]byte, bool, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

// Save atomically replaces the value stored under key.
func (s *FileStore) Save(key string, data []byte) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
