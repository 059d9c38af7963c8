// Package jsonfile stores state documents as plain JSON files, one per key, guarded by a
// cross-process file lock so two achiever processes never interleave a read and a write.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/evanschultz/achiever/internal/app"
)

const (
	lockTimeout    = 3 * time.Second
	lockMaxRetries = 3
	lockRetryDelay = 100 * time.Millisecond
)

// Store keeps one JSON file per document key inside dir.
type Store struct {
	dir string

	// io serializes callers in this process; a flock is re-entrant for its holder.
	io sync.Mutex

	mu    sync.Mutex
	locks map[string]*flock.Flock
}

// Open prepares dir for document storage.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("jsonfile dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create jsonfile dir: %w", err)
	}
	return &Store{dir: dir, locks: map[string]*flock.Flock{}}, nil
}

// Close releases any file locks still held.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, lock := range s.locks {
		if err := lock.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.locks = map[string]*flock.Flock{}
	return errors.Join(errs...)
}

// Path returns the file backing key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, fileName(key)+".json")
}

// LoadDocument reads the file for key, or returns app.ErrNotFound when it does not exist.
func (s *Store) LoadDocument(ctx context.Context, key string) ([]byte, error) {
	unlock, err := s.acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	body, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, app.ErrNotFound
		}
		return nil, fmt.Errorf("read document %q: %w", key, err)
	}
	return body, nil
}

// SaveDocument replaces the file for key by writing a temp file and renaming it over the old one.
func (s *Store) SaveDocument(ctx context.Context, key string, body []byte) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("document key is required")
	}
	unlock, err := s.acquire(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()

	path := s.Path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return fmt.Errorf("write document %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace document %q: %w", key, err)
	}
	return nil
}

// DocumentUpdatedAt returns the modification time of key's file.
func (s *Store) DocumentUpdatedAt(_ context.Context, key string) (time.Time, error) {
	info, err := os.Stat(s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, app.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("stat document %q: %w", key, err)
	}
	return info.ModTime().UTC(), nil
}

// acquire takes the exclusive lock for key, retrying a few times before giving up.
func (s *Store) acquire(ctx context.Context, key string) (func(), error) {
	lock := s.lockFor(key)
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	s.io.Lock()
	for i := 0; i < lockMaxRetries; i++ {
		locked, err := lock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			s.io.Unlock()
			return nil, fmt.Errorf("acquire lock for %q: %w", key, err)
		}
		if locked {
			return func() {
				_ = lock.Unlock()
				s.io.Unlock()
			}, nil
		}
		select {
		case <-ctx.Done():
			s.io.Unlock()
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
	s.io.Unlock()
	return nil, fmt.Errorf("acquire lock for %q: gave up after %d attempts", key, lockMaxRetries)
}

func (s *Store) lockFor(key string) *flock.Flock {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = flock.New(s.Path(key) + ".lock")
		s.locks[key] = lock
	}
	return lock
}

// fileName maps a document key onto a safe file name.
func fileName(key string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(key) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
