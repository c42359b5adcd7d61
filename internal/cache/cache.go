// Package cache memoizes item listings for a short TTL so repeated runs
// skip the slow `op item list` call. Item details are never cached.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/systmms/opz/internal/backend"
	"github.com/systmms/opz/internal/logging"
	"github.com/systmms/opz/internal/metrics"
)

// DefaultTTL is how long a listing is trusted.
const DefaultTTL = 60 * time.Second

const keyPrefix = "item_list_"

// allVaults selects the unscoped listing. It contains a NUL byte, which
// no vault name can.
const allVaults = "\x00all"

// Lister returns the item directory, optionally scoped to a vault.
type Lister interface {
	ListItems(ctx context.Context, vault string) ([]backend.ItemSummary, error)
}

// Clock abstracts time for freshness checks.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// CorruptError reports a fresh cache entry that could not be decoded.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("cache entry %s is corrupt: %v", e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// KeyFor names the cache entry for a vault selector; "" means all vaults.
func KeyFor(vault string) string {
	selector := vault
	if selector == "" {
		selector = allVaults
	}
	sum := sha256.Sum256([]byte(selector))
	return keyPrefix + hex.EncodeToString(sum[:]) + ".json"
}

// DefaultDir is the per-user cache directory for opz.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache directory: %w", err)
	}
	return filepath.Join(base, "opz"), nil
}

// Cache is a read-through TTL cache in front of a Lister.
type Cache struct {
	Store   Store
	Lister  Lister
	TTL     time.Duration
	Clock   Clock
	Metrics *metrics.Collector
	Logger  *logging.Logger
}

// New creates a cache with the default TTL and the system clock.
func New(store Store, lister Lister) *Cache {
	return &Cache{
		Store:  store,
		Lister: lister,
		TTL:    DefaultTTL,
		Clock:  SystemClock{},
	}
}

// ListItems returns the cached listing while it is younger than TTL and
// otherwise asks the Lister and refreshes the entry.
func (c *Cache) ListItems(ctx context.Context, vault string) ([]backend.ItemSummary, error) {
	key := KeyFor(vault)

	data, savedAt, err := c.Store.Load(key)
	switch {
	case err == nil && c.now().Sub(savedAt) < c.TTL:
		var items []backend.ItemSummary
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, &CorruptError{Key: key, Err: err}
		}
		c.Metrics.CacheHit()
		c.Logger.Debug("Item list cache hit (%s)", key)
		return items, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read cache entry %s: %w", key, err)
	}

	c.Metrics.CacheMiss()
	c.Logger.Debug("Item list cache miss (%s)", key)

	items, err := c.Lister.ListItems(ctx, vault)
	if err != nil {
		return nil, err
	}

	if c.TTL <= 0 {
		return items, nil
	}

	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode item list: %w", err)
	}
	if err := c.Store.Save(key, encoded); err != nil {
		c.Logger.Warn("Could not update item list cache: %v", err)
	}
	return items, nil
}

// Clear drops every cached listing.
func (c *Cache) Clear() error {
	return c.Store.Clear()
}

func (c *Cache) now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock.Now()
}
