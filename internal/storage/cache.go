// Package storage keeps the last good remote catalog payload on disk.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

// Bucket names in bbolt
var (
	bucketPayloads = []byte("payloads")
	bucketMeta     = []byte("meta")

	keyLatest    = []byte("latest")
	keyFetchedAt = []byte("fetched_at")
	keyRevision  = []byte("current_revision")
)

// ErrEmpty is returned by Get when nothing has been stored yet.
var ErrEmpty = errors.New("storage: no cached payload")

// Entry is a cached payload and when it was fetched.
type Entry struct {
	Payload   []byte
	FetchedAt time.Time
	Revision  int64
}

// Age returns how old the entry is at now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// Cache is a single-slot bbolt store for raw catalog payloads. Each Put bumps
// a revision counter so callers can tell writes apart.
type Cache struct {
	mu         sync.RWMutex
	db         *bbolt.DB
	currentRev int64
}

// Open opens or creates the cache file at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketPayloads, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	c := &Cache{db: db}
	if err := c.loadRevision(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Put replaces the cached payload and returns the new revision.
func (c *Cache) Put(payload []byte, fetchedAt time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rev := c.currentRev + 1
	err := c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketPayloads).Put(keyLatest, payload); err != nil {
			return err
		}
		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(keyFetchedAt, []byte(fetchedAt.UTC().Format(time.RFC3339Nano))); err != nil {
			return err
		}
		return meta.Put(keyRevision, []byte(strconv.FormatInt(rev, 10)))
	})
	if err != nil {
		return 0, fmt.Errorf("write cache: %w", err)
	}

	c.currentRev = rev
	return rev, nil
}

// Get returns the cached payload, or ErrEmpty.
func (c *Cache) Get() (Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var e Entry
	err := c.db.View(func(tx *bbolt.Tx) error {
		payload := tx.Bucket(bucketPayloads).Get(keyLatest)
		if payload == nil {
			return ErrEmpty
		}
		// bbolt memory is only valid inside the transaction.
		e.Payload = append([]byte(nil), payload...)

		meta := tx.Bucket(bucketMeta)
		ts, err := time.Parse(time.RFC3339Nano, string(meta.Get(keyFetchedAt)))
		if err != nil {
			return fmt.Errorf("parse fetched_at: %w", err)
		}
		e.FetchedAt = ts
		e.Revision = c.currentRev
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Revision returns the revision of the last Put.
func (c *Cache) Revision() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentRev
}

func (c *Cache) loadRevision() error {
	return c.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketMeta).Get(keyRevision)
		if raw == nil {
			return nil
		}
		rev, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("parse revision: %w", err)
		}
		c.currentRev = rev
		return nil
	})
}
