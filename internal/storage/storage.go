// Package storage keeps uploaded knowledge-base files under a fixed root.
// Every read resolves through the containment check so a stored key can never
// escape the root.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrOutsideRoot = errors.New("storage: path escapes upload root")

type Store struct {
	root string
}

func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Save streams src into a freshly named file and returns the key to persist
// as the source value.
func (s *Store) Save(ext string, src io.Reader) (key string, size int64, err error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := uuid.NewString() + ext
	f, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", 0, fmt.Errorf("storage: create file: %w", err)
	}
	defer f.Close()
	size, err = io.Copy(f, src)
	if err != nil {
		_ = os.Remove(f.Name())
		return "", 0, fmt.Errorf("storage: write file: %w", err)
	}
	return name, size, nil
}

// Resolve maps a stored key to an absolute path, rejecting anything that
// would land outside the upload root.
func (s *Store) Resolve(key string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		return "", fmt.Errorf("storage: resolve key: %w", err)
	}
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return "", ErrOutsideRoot
	}
	return abs, nil
}

func (s *Store) Exists(key string) bool {
	abs, err := s.Resolve(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

func (s *Store) Open(key string) (*os.File, error) {
	abs, err := s.Resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(abs)
}
