package sqlkv

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.sqlkv.dev/sqlkv/codec"
	"go.sqlkv.dev/sqlkv/metrics"
)

// DB is a typed key/value store bound to a mutation Strategy. Keys are
// arbitrary byte sequences compared byte-for-byte; values are any type the
// codec package can represent. All operations are safe for concurrent use.
type DB[S Strategy] struct {
	s S
}

// Open opens a store using the strategy T, creating its schema if needed:
//
//	db, err := sqlkv.Open[sqlkv.Append](ctx, sqlkv.Config{InMemory: true})
//
// The returned *DB exposes the uniform operation surface. Operations
// specific to versioned strategies (CollectGarbage, EntriesCount) are
// package functions constrained to Versioned, and do not compile against a
// store bound to UpdateInPlace.
func Open[T any, S interface {
	*T
	Strategy
}](ctx context.Context, cfg Config) (*DB[S], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	var s = S(new(T))
	if err := s.open(ctx, cfg); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"strategy": s.name(),
		"inMemory": cfg.InMemory,
		"path":     cfg.Path,
	}).Debug("opened store")

	return &DB[S]{s: s}, nil
}

// Write encodes the value and stores it under key. Under UpdateInPlace the
// key's single row is replaced; under Append a new value entry is added and
// prior entries are retained.
func (db *DB[S]) Write(ctx context.Context, key []byte, value interface{}) error {
	var b, err = codec.Encode(value)
	if err != nil {
		return err
	}
	err = db.s.put(ctx, key, b)
	metrics.StoreWriteTotal.WithLabelValues(db.s.name(), statusLabel(err)).Inc()
	return err
}

// Read decodes the current value of key into |into|, which must be a
// non-nil pointer. It returns false, without error, if the key is not
// present.
func (db *DB[S]) Read(ctx context.Context, key []byte, into interface{}) (bool, error) {
	var b, found, err = db.s.get(ctx, key)
	metrics.StoreReadTotal.WithLabelValues(db.s.name(), statusLabel(err)).Inc()

	if err != nil || !found {
		return false, err
	}
	return true, codec.Decode(b, into)
}

// Delete removes the key and its value(s). Deleting an absent key is a
// no-op success.
func (db *DB[S]) Delete(ctx context.Context, key []byte) error {
	var err = db.s.del(ctx, key)
	metrics.StoreDeleteTotal.WithLabelValues(db.s.name(), statusLabel(err)).Inc()
	return err
}

// Keys enumerates all present keys, in unspecified order.
func (db *DB[S]) Keys(ctx context.Context) ([][]byte, error) {
	return db.s.keys(ctx)
}

// KeysCount returns the number of distinct present keys.
func (db *DB[S]) KeysCount(ctx context.Context) (uint64, error) {
	return db.s.keysCount(ctx)
}

// Close releases the store's connection pool. An in-memory store's
// contents are discarded.
func (db *DB[S]) Close() error {
	return db.s.close()
}

// CollectGarbage irreversibly discards all superseded value entries of a
// versioned store, retaining each key's current value. Reads observe no
// difference before and after.
func CollectGarbage[S Versioned](ctx context.Context, db *DB[S]) error {
	return db.s.collectGarbage(ctx)
}

// EntriesCount returns a versioned store's total number of value entries
// across all keys, including superseded versions. It is a diagnostic of
// how much garbage collection would reclaim.
func EntriesCount[S Versioned](ctx context.Context, db *DB[S]) (uint64, error) {
	return db.s.entriesCount(ctx)
}

func statusLabel(err error) string {
	if err != nil {
		return metrics.Fail
	}
	return metrics.Ok
}
