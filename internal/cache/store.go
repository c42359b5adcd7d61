package cache

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Store persists cache entries by key. Load reports fs.ErrNotExist for a
// key that was never saved.
type Store interface {
	Load(key string) (data []byte, savedAt time.Time, err error)
	Save(key string, data []byte) error
	Clear() error
}

// FileStore keeps one file per key in Dir and uses file mtimes as save
// times.
type FileStore struct {
	Dir string
}

// Load reads the entry for key.
func (s *FileStore) Load(key string) ([]byte, time.Time, error) {
	path := filepath.Join(s.Dir, key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	return data, info.ModTime(), nil
}

// Save writes the entry through a temp file and a rename so readers never
// observe a partial file.
func (s *FileStore) Save(key string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.Dir, key)); err != nil {
		return fmt.Errorf("replace cache entry: %w", err)
	}
	return nil
}

// Clear removes every cache entry in Dir. Other files are left alone.
func (s *FileStore) Clear() error {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), keyPrefix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// MemoryStore is an in-process Store. Save times come from Clock.
type MemoryStore struct {
	Clock Clock

	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data    []byte
	savedAt time.Time
}

// NewMemoryStore creates an empty store stamped by clock.
func NewMemoryStore(clock Clock) *MemoryStore {
	return &MemoryStore{Clock: clock, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Load(key string) ([]byte, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, time.Time{}, fs.ErrNotExist
	}
	return append([]byte(nil), e.data...), e.savedAt, nil
}

func (s *MemoryStore) Save(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{data: append([]byte(nil), data...), savedAt: s.Clock.Now()}
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]memoryEntry)
	return nil
}

// Put stores raw data under key with an explicit save time.
func (s *MemoryStore) Put(key string, data []byte, savedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{data: data, savedAt: savedAt}
}
