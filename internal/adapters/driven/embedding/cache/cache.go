// Package cache provides a badger-backed embedding cache and a decorator
// that puts it in front of any embedding service.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
	"github.com/leh60245/enterprise-storm/internal/logger"
)

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// DefaultTTL is how long cached vectors live when no TTL is given.
const DefaultTTL = 24 * time.Hour

// Cache stores vectors in badger with a per-entry TTL.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// Options configure Open.
type Options struct {
	// Dir is the cache directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps the cache in memory only.
	InMemory bool

	// TTL is the entry lifetime (default 24h).
	TTL time.Duration
}

// badgerLogger routes badger's logging to the application logger.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...any)   { logger.Error("badger: "+f, v...) }
func (badgerLogger) Warningf(f string, v ...any) { logger.Warn("badger: "+f, v...) }
func (badgerLogger) Infof(f string, v ...any)    { logger.Debug("badger: "+f, v...) }
func (badgerLogger) Debugf(f string, v ...any)   { logger.Debug("badger: "+f, v...) }

// Open opens or creates a cache.
func Open(opts Options) (*Cache, error) {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Dir == "" {
			return nil, errors.New("cache: directory required")
		}
		if err := os.MkdirAll(opts.Dir, 0700); err != nil {
			return nil, fmt.Errorf("cache: creating directory: %w", err)
		}
		bopts = badger.DefaultOptions(opts.Dir)
	}
	bopts.Logger = badgerLogger{}
	bopts.Compression = options.None

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("cache: open: %w", err)
	}
	return &Cache{db: db, ttl: opts.TTL}, nil
}

// Key derives the cache key for text embedded by model.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached vector and true on a hit.
func (c *Cache) Get(_ context.Context, key string) ([]float32, bool) {
	var vec []float32
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			vec = decode(val)
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logger.Warn("Embedding cache read failed: %v", err)
		}
		return nil, false
	}
	return vec, vec != nil
}

// Put stores vec under key with the cache TTL.
func (c *Cache) Put(_ context.Context, key string, vec []float32) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), encode(vec)).WithTTL(c.ttl))
	})
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func encode(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decode(data []byte) []float32 {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec
}
