package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store reads and writes encoded sequence documents.
type Store interface {
	Load(path string) ([]byte, error)
	Save(path string, data []byte) error
}

// OperationError reports a failed storage operation.
type OperationError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsNotExist reports whether err means the document does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// FileStore stores documents on the local filesystem.
type FileStore struct {
	// Perm is the mode of newly written files. Defaults to 0o644.
	Perm fs.FileMode
}

// NewFileStore creates a FileStore with default permissions.
func NewFileStore() *FileStore {
	return &FileStore{Perm: 0o644}
}

// Load reads the document at path.
func (s *FileStore) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &OperationError{Op: "load", Path: path, Err: err}
	}
	return data, nil
}

// Save writes data to path atomically, creating parent directories as
// needed.
func (s *FileStore) Save(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &OperationError{Op: "save", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &OperationError{Op: "save", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &OperationError{Op: "save", Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &OperationError{Op: "save", Path: path, Err: err}
	}

	perm := s.Perm
	if perm == 0 {
		perm = 0o644
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return &OperationError{Op: "save", Path: path, Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &OperationError{Op: "save", Path: path, Err: err}
	}
	return nil
}
