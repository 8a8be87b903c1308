package sqlkv

import (
	"context"
	"database/sql"
	"database/sql/driver"

	log "github.com/sirupsen/logrus"
	"go.sqlkv.dev/sqlkv/metrics"
)

// txn scopes a write transaction to a pinned pooled connection. The
// transaction is begun with BEGIN IMMEDIATE, taking the engine's write lock
// up front rather than upgrading at first write (which can deadlock against
// concurrent readers).
//
// A txn guarantees the connection is never returned to its pool with the
// transaction still open: callers pair beginImmediate with a deferred
// Rollback, which runs on every exit path (early return, failure, panic,
// caller cancellation) and is a no-op after a successful Commit.
type txn struct {
	conn *sql.Conn
	open bool
}

// beginImmediate begins a write-locking transaction on the connection.
// It fails with a BusyError if the write lock cannot be obtained within
// the connection's busy timeout.
func beginImmediate(ctx context.Context, conn *sql.Conn) (*txn, error) {
	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE;"); err != nil {
		return nil, classify(err)
	}
	return &txn{conn: conn, open: true}, nil
}

// Commit finalizes the transaction. On failure the transaction remains
// open, the error is surfaced, and a deferred Rollback still runs.
func (t *txn) Commit(ctx context.Context) error {
	if _, err := t.conn.ExecContext(ctx, "COMMIT;"); err != nil {
		return classify(err)
	}
	t.open = false
	return nil
}

// Rollback discards the transaction if it is still open. It deliberately
// runs under context.Background() rather than a caller's context: the
// caller may already be cancelled, and the rollback must run to completion
// before the connection can be reused, as a half-finished rollback would
// carry the open transaction into the connection's next use.
func (t *txn) Rollback() {
	if !t.open {
		return
	}
	t.open = false
	metrics.TxnRollbackTotal.Inc()

	if _, err := t.conn.ExecContext(context.Background(), "ROLLBACK;"); err != nil {
		log.WithField("err", err).Error("failed to roll back transaction")
		// The connection still holds an open transaction. Mark it bad so
		// the pool discards it instead of handing it to the next caller.
		_ = t.conn.Raw(func(interface{}) error { return driver.ErrBadConn })
	}
}
