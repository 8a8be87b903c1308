package sqlkv

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// pool is a strategy's bounded set of connections to one SQLite database.
type pool struct {
	db             *sql.DB
	acquireTimeout time.Duration

	// keepAlive pins a shared in-memory database, which otherwise lives
	// only while at least one connection remains open.
	keepAlive *sql.Conn
}

// openPool opens the database named by the Config and bounds its
// connection count.
func openPool(ctx context.Context, cfg Config) (*pool, error) {
	var db, err = sql.Open("sqlite3", cfg.dsn())
	if err != nil {
		return nil, errors.WithMessage(classify(err), "opening SQLite DB")
	}

	// The pinned keep-alive connection of an in-memory store sits outside
	// the configured budget, or a MaxConns of one could never serve a call.
	var maxConns = cfg.MaxConns
	if cfg.InMemory {
		maxConns++
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	var p = &pool{db: db, acquireTimeout: cfg.AcquireTimeout}

	if cfg.InMemory {
		if p.keepAlive, err = db.Conn(ctx); err != nil {
			_ = db.Close()
			return nil, errors.WithMessage(classify(err), "pinning in-memory DB")
		}
	}
	return p, nil
}

// acquire checks out a pooled connection, waiting at most acquireTimeout
// for one to become free. The caller must Close the returned connection to
// return it to the pool.
func (p *pool) acquire(ctx context.Context) (*sql.Conn, error) {
	var timedCtx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	var conn, err = p.db.Conn(timedCtx)
	if err != nil {
		if timedCtx.Err() != nil {
			return nil, &PoolError{Err: err}
		}
		return nil, classify(err)
	}
	return conn, nil
}

// bootstrap executes schema DDL within a single write-locking transaction,
// so that concurrent opens of one database cannot interleave partial schema.
func (p *pool) bootstrap(ctx context.Context, ddl string) error {
	var conn, err = p.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	txn, err := beginImmediate(ctx, conn)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	if _, err = conn.ExecContext(ctx, ddl); err != nil {
		return errors.WithMessage(classify(err), "bootstrapping schema")
	}
	return txn.Commit(ctx)
}

// close releases the pool and all of its connections.
func (p *pool) close() error {
	if p.keepAlive != nil {
		_ = p.keepAlive.Close()
	}
	return classify(p.db.Close())
}
