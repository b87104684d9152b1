// Package cache stores aggregated codon counts in a bolt database, so
// an unchanged input file is not parsed again.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"

	"github.com/mrrlab/geneticker/codon"
)

// log is the global logging variable.
var log = logging.MustGetLogger("cache")

// MAIN is the bucket name for all the cached counts.
var MAIN = []byte("main")

// version is increased when the stored format changes, so old entries
// are not used.
const version = 1

// Key returns the cache key for an input file. The key depends on the
// absolute path, the size and the modification time of the file.
func Key(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("v%d:%s:%d:%d", version, abs, fi.Size(), fi.ModTime().UnixNano())), nil
}

// Cache saves and loads aggregated counts.
type Cache struct {
	db *bolt.DB
}

// New creates a new Cache. A nil db gives a cache which never stores
// anything.
func New(db *bolt.DB) *Cache {
	return &Cache{db: db}
}

// Open opens (or creates) the bolt database at path. It fails if the
// database stays locked by another process for a second.
func Open(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0666, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// Close closes the database.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Save stores counts under the key.
func (c *Cache) Save(key []byte, counts *codon.Counts) error {
	b, err := json.Marshal(counts)
	if err != nil {
		log.Error("Error serializing counts", err)
		return err
	}
	err = SaveData(c.db, key, b)
	if err != nil {
		log.Error("Error saving counts", err)
	}
	return err
}

// Load returns the counts stored under the key, or nil if there are
// none.
func (c *Cache) Load(key []byte) (*codon.Counts, error) {
	b, err := LoadData(c.db, key)
	if err != nil || b == nil {
		return nil, err
	}

	counts := codon.NewCounts()
	if err := json.Unmarshal(b, counts); err != nil {
		return nil, err
	}
	log.Noticef("Found cached counts (%d codons, %d records)", counts.Total(), counts.Stats.Records)
	return counts, nil
}

// SaveData saves values in bolt database.
func SaveData(db *bolt.DB, key []byte, data []byte) error {
	if db == nil {
		return nil
	}
	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(MAIN)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// LoadData loads data from bolt database.
func LoadData(db *bolt.DB, key []byte) ([]byte, error) {
	var data []byte
	if db == nil {
		return nil, nil
	}
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}

		// v is only valid inside the transaction
		if v := b.Get(key); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
