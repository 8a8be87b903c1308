// Package sqlkv is a typed key/value storage library layered atop embedded
// SQLite. Binary keys map to CBOR-encoded values under one of two mutation
// disciplines, selected at open:
//
//   - UpdateInPlace keeps exactly one row per key, and writes overwrite it.
//   - Append retains every written version, resolves reads to the most
//     recently inserted one, and reclaims superseded versions only through
//     explicit garbage collection.
//
// Both disciplines implement one sealed Strategy contract, and a DB is
// generic over the strategy it is bound to. Every mutating path runs under
// a write-locking transaction which commits fully or rolls back fully,
// including when the caller's context is cancelled mid-operation.
//
// The library performs no retries: lock contention surfaces as BusyError
// and pool exhaustion as PoolError after their configured bounded waits,
// and the caller decides what to do next.
package sqlkv
