// Package admincache is the Go analogue of the original indexer's redb-
// backed cache: an embedded, transactional key-value store (here
// go.etcd.io/bbolt) holding which admin areas cover a given S2 cell,
// and what a given admin area's resolved names and languages are. It
// buffers writes and commits them in a single transaction every
// BufferSize items, flushing early on Close, exactly matching the
// original's batched-commit discipline.
package admincache

import (
	"encoding/binary"
	"strings"
	"sync"

	"go.etcd.io/bbolt"

	geoerrors "github.com/standardbeagle/geocoder/internal/errors"
)

var (
	bucketAreas = []byte("admin_areas")
	bucketNames = []byte("admin_names")
	bucketLangs = []byte("admin_langs")
	bucketKinds = []byte("admin_kinds")
)

const DefaultBufferSize = 5000

// Cache wraps a bbolt database with the four admin-resolution tables
// and a buffered, single-writer commit loop.
type Cache struct {
	db         *bbolt.DB
	bufferSize int

	mu      sync.Mutex
	pending []writeItem
}

type writeItem struct {
	bucket []byte
	key    []byte
	value  []byte
}

// Open opens (creating if necessary) a bbolt database at path and
// ensures all four tables exist.
func Open(path string, bufferSize int) (*Cache, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, geoerrors.NewAdminError(0, "failed to open admin cache database").WithCause(err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketAreas, bucketNames, bucketLangs, bucketKinds} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, geoerrors.NewAdminError(0, "failed to create admin cache buckets").WithCause(err)
	}

	return &Cache{db: db, bufferSize: bufferSize}, nil
}

func cellKey(cell uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, cell)
	return b
}

func idKey(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}

// AdminsForCell returns the admin area IDs cached for a (typically
// level-15-truncated) S2 cell, or ok=false if nothing is cached yet.
func (c *Cache) AdminsForCell(cell uint64) (ids []uint64, ok bool, err error) {
	err = c.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketAreas).Get(cellKey(cell))
		if raw == nil {
			return nil
		}
		ok = true
		for i := 0; i+8 <= len(raw); i += 8 {
			ids = append(ids, binary.LittleEndian.Uint64(raw[i:i+8]))
		}
		return nil
	})
	return ids, ok, err
}

// NamesForAdmin returns the cached display names for an admin area ID.
func (c *Cache) NamesForAdmin(id uint64) (names []string, ok bool, err error) {
	err = c.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketNames).Get(idKey(id))
		if raw == nil {
			return nil
		}
		ok = true
		names = strings.Split(string(raw), "\x00")
		return nil
	})
	return names, ok, err
}

// LangsForAdmin returns the cached language codes available for an
// admin area ID's names.
func (c *Cache) LangsForAdmin(id uint64) (langs []string, ok bool, err error) {
	err = c.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketLangs).Get(idKey(id))
		if raw == nil {
			return nil
		}
		ok = true
		langs = strings.Split(string(raw), "\x00")
		return nil
	})
	return langs, ok, err
}

// KindForAdmin returns the cached WhosOnFirst placetype for an admin
// area ID, as persisted when its ID was first discovered.
func (c *Cache) KindForAdmin(id uint64) (kind string, ok bool, err error) {
	err = c.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketKinds).Get(idKey(id))
		if raw == nil {
			return nil
		}
		ok = true
		kind = string(raw)
		return nil
	})
	return kind, ok, err
}

// PutKindForAdmin queues a placetype write for an admin area ID.
func (c *Cache) PutKindForAdmin(id uint64, kind string) error {
	return c.enqueue(bucketKinds, idKey(id), []byte(kind))
}

// PutAdminsForCell queues an admin-ID-list write for cell, packed the
// same way the original's redb table packs them: little-endian u64s
// concatenated.
func (c *Cache) PutAdminsForCell(cell uint64, ids []uint64) error {
	packed := make([]byte, 0, len(ids)*8)
	for _, id := range ids {
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, id)
		packed = append(packed, b...)
	}
	return c.enqueue(bucketAreas, cellKey(cell), packed)
}

// PutNamesForAdmin queues a names write for an admin area ID.
func (c *Cache) PutNamesForAdmin(id uint64, names []string) error {
	return c.enqueue(bucketNames, idKey(id), []byte(strings.Join(names, "\x00")))
}

// PutLangsForAdmin queues a languages write for an admin area ID.
func (c *Cache) PutLangsForAdmin(id uint64, langs []string) error {
	return c.enqueue(bucketLangs, idKey(id), []byte(strings.Join(langs, "\x00")))
}

func (c *Cache) enqueue(bucket, key, value []byte) error {
	c.mu.Lock()
	c.pending = append(c.pending, writeItem{bucket: bucket, key: key, value: value})
	shouldFlush := len(c.pending) >= c.bufferSize
	c.mu.Unlock()

	if shouldFlush {
		return c.Flush()
	}
	return nil
}

// Flush commits every queued write in a single bbolt transaction.
func (c *Cache) Flush() error {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	err := c.db.Update(func(tx *bbolt.Tx) error {
		for _, item := range batch {
			if err := tx.Bucket(item.bucket).Put(item.key, item.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return geoerrors.NewAdminError(0, "failed to flush admin cache batch").WithCause(err)
	}
	return nil
}

// Close flushes any pending writes and closes the underlying database.
func (c *Cache) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}
	return c.db.Close()
}
