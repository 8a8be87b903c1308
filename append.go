package sqlkv

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.sqlkv.dev/sqlkv/metrics"
)

// Append is the append-only versioned mutation discipline: a write never
// replaces a prior value, it inserts a new value entry, and a read resolves
// to the entry with the greatest insertion timestamp. Superseded entries
// accumulate until discarded by garbage collection.
//
// Each distinct key ever written has one key entry, which relates the key's
// bytes to a surrogate id. Value entries reference that id and are removed
// by cascade when the key entry is deleted.
type Append struct {
	pool *pool
}

// The "vals" relation is named to sidestep VALUES being a SQL keyword.
const appendSchema = `
CREATE TABLE IF NOT EXISTS keys (
	id          INTEGER PRIMARY KEY,
	key         BLOB NOT NULL,
	inserted_at DATETIME NOT NULL DEFAULT (STRFTIME('%Y-%m-%d %H:%M:%f', 'NOW'))
);
CREATE TABLE IF NOT EXISTS vals (
	id          INTEGER PRIMARY KEY,
	key_id      INTEGER NOT NULL,
	value       BLOB NOT NULL,
	inserted_at DATETIME NOT NULL DEFAULT (STRFTIME('%Y-%m-%d %H:%M:%f', 'NOW')),

	FOREIGN KEY (key_id) REFERENCES keys (id) ON DELETE CASCADE
);
CREATE UNIQUE INDEX IF NOT EXISTS keys_key ON keys (key);
CREATE INDEX IF NOT EXISTS vals_inserted_at ON vals (inserted_at);
CREATE INDEX IF NOT EXISTS vals_key_id ON vals (key_id);`

func (s *Append) open(ctx context.Context, cfg Config) error {
	var p, err = openPool(ctx, cfg)
	if err != nil {
		return err
	}
	if err = p.bootstrap(ctx, appendSchema); err != nil {
		_ = p.close()
		return err
	}
	s.pool = p
	return nil
}

// put upserts the key entry and inserts a new value entry as one atomic
// unit: both occur within a single write-locking transaction, and a failure
// or abandonment anywhere before Commit rolls back the entire unit.
func (s *Append) put(ctx context.Context, key, value []byte) error {
	var conn, err = s.pool.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	txn, err := beginImmediate(ctx, conn)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	// The conflict clause's no-op update of |key| ensures RETURNING yields
	// the existing row's id (DO NOTHING would return no row at all).
	var keyID int64
	if err = conn.QueryRowContext(ctx, `
		INSERT INTO keys (key) VALUES (?)
		ON CONFLICT(key) DO UPDATE SET key = excluded.key
		RETURNING id;`, key).Scan(&keyID); err != nil {
		return errors.WithMessage(classify(err), "upserting key entry")
	}

	if _, err = conn.ExecContext(ctx,
		`INSERT INTO vals (key_id, value) VALUES (?, ?);`,
		keyID, value); err != nil {
		return errors.WithMessage(classify(err), "inserting value entry")
	}
	return txn.Commit(ctx)
}

// get resolves the current value of |key|: the value entry of greatest
// inserted_at, with ties broken by greatest id (matching the entry which
// collectGarbage retains).
func (s *Append) get(ctx context.Context, key []byte) ([]byte, bool, error) {
	var conn, err = s.pool.acquire(ctx)
	if err != nil {
		return nil, false, err
	}
	defer conn.Close()

	var value []byte
	err = conn.QueryRowContext(ctx, `
		SELECT v.value
		FROM keys k
		JOIN vals v ON v.key_id = k.id
		WHERE k.key = ?
		ORDER BY v.inserted_at DESC, v.id DESC
		LIMIT 1;`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.WithMessage(classify(err), "querying current value")
	}
	return value, true, nil
}

// del removes the key entry; the cascade rule removes all of its value
// entries within the same statement, which the engine executes atomically.
func (s *Append) del(ctx context.Context, key []byte) error {
	var conn, err = s.pool.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.ExecContext(ctx, `DELETE FROM keys WHERE key = ?;`, key)
	return errors.WithMessage(classify(err), "deleting key entry")
}

func (s *Append) keys(ctx context.Context) ([][]byte, error) {
	var conn, err = s.pool.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, `SELECT key FROM keys;`)
	if err != nil {
		return nil, errors.WithMessage(classify(err), "querying keys")
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var key []byte
		if err = rows.Scan(&key); err != nil {
			return nil, errors.WithMessage(classify(err), "scanning key")
		}
		out = append(out, key)
	}
	return out, errors.WithMessage(classify(rows.Err()), "iterating keys")
}

func (s *Append) keysCount(ctx context.Context) (uint64, error) {
	var conn, err = s.pool.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	var count uint64
	err = conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM keys;`).Scan(&count)
	return count, errors.WithMessage(classify(err), "counting keys")
}

// collectGarbage irreversibly discards, for every key, all value entries
// other than the current one: the entry of greatest inserted_at, ties
// broken by greatest id. It runs as one set-based statement, so a failed
// pass discards nothing.
func (s *Append) collectGarbage(ctx context.Context) error {
	var conn, err = s.pool.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, `
		WITH current AS (
			SELECT key_id, MAX(inserted_at) AS inserted_at
			FROM vals
			GROUP BY key_id
		),
		retained AS (
			SELECT MAX(v.id) AS id
			FROM vals v
			JOIN current c ON v.key_id = c.key_id AND v.inserted_at = c.inserted_at
			GROUP BY v.key_id
		)
		DELETE FROM vals WHERE id NOT IN (SELECT id FROM retained);`)
	if err != nil {
		return errors.WithMessage(classify(err), "deleting superseded entries")
	}

	var discarded, _ = res.RowsAffected()
	metrics.GCRunTotal.Inc()
	metrics.GCDiscardedTotal.Add(float64(discarded))

	log.WithField("entries", discarded).Debug("collected garbage")
	return nil
}

func (s *Append) entriesCount(ctx context.Context) (uint64, error) {
	var conn, err = s.pool.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	var count uint64
	err = conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM vals;`).Scan(&count)
	return count, errors.WithMessage(classify(err), "counting value entries")
}

func (s *Append) name() string { return "append" }

func (s *Append) close() error { return s.pool.close() }
