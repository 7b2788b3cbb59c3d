package file

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"investigation-canvas/infrastructure/persistence"
)

const (
	extension  = ".json"
	tempSuffix = ".tmp"
)

// Store keeps one file per key in a directory
type Store struct {
	dir string
}

// Open creates the directory if needed and returns a store rooted at it
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes to
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+extension)
}

// Get reads the file for key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Put writes value to a temp file of its own and renames it into place, so
// concurrent writers of one key never share a partially written file
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	f, err := os.CreateTemp(s.dir, "."+url.PathEscape(key)+".*"+tempSuffix)
	if err != nil {
		return fmt.Errorf("create %s tmp: %w", key, err)
	}
	tmp := f.Name()
	if err := writeTemp(f, value); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s tmp: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

func writeTemp(f *os.File, value []byte) error {
	if _, err := f.Write(value); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(0644); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Delete removes the file for key
func (s *Store) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys with the given prefix, sorted
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, extension) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, extension))
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

var _ persistence.Backend = (*Store)(nil)
