package sqlkv

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// UpdateInPlace is the overwrite-in-place mutation discipline: each key has
// exactly one stored row, and a write of an existing key replaces that
// row's value. It carries no history and requires no garbage collection.
type UpdateInPlace struct {
	pool *pool
}

const updateInPlaceSchema = `
CREATE TABLE IF NOT EXISTS kvs (
	key         BLOB NOT NULL PRIMARY KEY,
	value       BLOB NOT NULL,
	inserted_at DATETIME NOT NULL DEFAULT (STRFTIME('%Y-%m-%d %H:%M:%f', 'NOW')),
	updated_at  DATETIME NOT NULL DEFAULT (STRFTIME('%Y-%m-%d %H:%M:%f', 'NOW'))
);`

func (s *UpdateInPlace) open(ctx context.Context, cfg Config) error {
	var p, err = openPool(ctx, cfg)
	if err != nil {
		return err
	}
	if err = p.bootstrap(ctx, updateInPlaceSchema); err != nil {
		_ = p.close()
		return err
	}
	s.pool = p
	return nil
}

// put upserts the row of |key|. A single statement suffices: the engine
// guarantees statement atomicity, so no explicit transaction is begun.
func (s *UpdateInPlace) put(ctx context.Context, key, value []byte) error {
	var conn, err = s.pool.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.ExecContext(ctx, `
		INSERT INTO kvs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = STRFTIME('%Y-%m-%d %H:%M:%f', 'NOW');`,
		key, value)
	return errors.WithMessage(classify(err), "upserting row")
}

func (s *UpdateInPlace) get(ctx context.Context, key []byte) ([]byte, bool, error) {
	var conn, err = s.pool.acquire(ctx)
	if err != nil {
		return nil, false, err
	}
	defer conn.Close()

	var value []byte
	err = conn.QueryRowContext(ctx,
		`SELECT value FROM kvs WHERE key = ?;`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.WithMessage(classify(err), "querying row")
	}
	return value, true, nil
}

func (s *UpdateInPlace) del(ctx context.Context, key []byte) error {
	var conn, err = s.pool.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.ExecContext(ctx, `DELETE FROM kvs WHERE key = ?;`, key)
	return errors.WithMessage(classify(err), "deleting row")
}

func (s *UpdateInPlace) keys(ctx context.Context) ([][]byte, error) {
	var conn, err = s.pool.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, `SELECT key FROM kvs;`)
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

func (s *UpdateInPlace) keysCount(ctx context.Context) (uint64, error) {
	var conn, err = s.pool.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	var count uint64
	err = conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM kvs;`).Scan(&count)
	return count, errors.WithMessage(classify(err), "counting keys")
}

func (s *UpdateInPlace) name() string { return "update_in_place" }

func (s *UpdateInPlace) close() error { return s.pool.close() }
