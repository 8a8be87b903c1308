package sqlkv

import (
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultPath is the database file used by file-backed stores when
// Config.Path is not set.
const DefaultPath = "sqlkv.db"

// Default bounds applied by Config.withDefaults.
const (
	DefaultMaxConns       = 10
	DefaultBusyTimeout    = 5 * time.Second
	DefaultAcquireTimeout = 5 * time.Second
)

// Config configures the opening of a store.
type Config struct {
	// InMemory selects a volatile in-memory database over a file-backed one.
	// Contents are discarded when the store is closed.
	InMemory bool
	// Path of the database file. If empty, DefaultPath is used.
	// Path is ignored if InMemory is set.
	Path string
	// MaxConns bounds the store's connection pool. Default is DefaultMaxConns.
	MaxConns int
	// BusyTimeout bounds the wait for the engine's write lock, after which
	// an operation fails with a BusyError rather than blocking indefinitely.
	// Default is DefaultBusyTimeout.
	BusyTimeout time.Duration
	// AcquireTimeout bounds the wait for a pooled connection, after which
	// an operation fails with a PoolError. Default is DefaultAcquireTimeout.
	AcquireTimeout time.Duration
}

// Validate returns an error if the Config is malformed.
func (cfg Config) Validate() error {
	if cfg.MaxConns < 0 {
		return errors.Errorf("invalid MaxConns (%d; expected >= 0)", cfg.MaxConns)
	} else if cfg.BusyTimeout < 0 {
		return errors.Errorf("invalid BusyTimeout (%s; expected >= 0)", cfg.BusyTimeout)
	} else if cfg.AcquireTimeout < 0 {
		return errors.Errorf("invalid AcquireTimeout (%s; expected >= 0)", cfg.AcquireTimeout)
	}
	return nil
}

// withDefaults returns a copy of the Config with zero-valued fields set to
// their defaults.
func (cfg Config) withDefaults() Config {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = DefaultMaxConns
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = DefaultBusyTimeout
	}
	if cfg.AcquireTimeout == 0 {
		cfg.AcquireTimeout = DefaultAcquireTimeout
	}
	return cfg
}

// dsn maps the Config to a SQLite connection string. Each call for an
// in-memory Config names a distinct shared-cache database, so that every
// opened store is its own namespace while all connections of that store's
// pool observe one database.
//
// "_busy_timeout" bounds waits for the engine's write lock, and
// "_foreign_keys" enables cascading deletes. Both are applied to every
// connection of the pool, rather than to whichever single connection
// happens to execute a PRAGMA.
func (cfg Config) dsn() string {
	var v = make(url.Values)
	v.Set("_busy_timeout", strconv.Itoa(int(cfg.BusyTimeout/time.Millisecond)))
	v.Set("_foreign_keys", "on")

	if cfg.InMemory {
		v.Set("mode", "memory")
		v.Set("cache", "shared")
		return "file:" + uuid.NewString() + "?" + v.Encode()
	}
	return "file:" + cfg.Path + "?" + v.Encode()
}
