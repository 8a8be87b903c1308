package sqlkv

import "context"

// Strategy is the contract implemented by the store's mutation disciplines.
// Its methods are unexported, sealing the set of implementations to this
// package: a DB's typed operations are the public surface, and the raw
// byte-oriented operations below are implementation detail.
type Strategy interface {
	// open idempotently ensures the strategy's schema and readies its
	// connection pool.
	open(ctx context.Context, cfg Config) error
	// put stores the encoded value under key.
	put(ctx context.Context, key, value []byte) error
	// get returns the current encoded value of key, or false if the key
	// is not present.
	get(ctx context.Context, key []byte) ([]byte, bool, error)
	// del removes the key. Deleting an absent key is a no-op success.
	del(ctx context.Context, key []byte) error
	// keys enumerates all present keys, in unspecified order.
	keys(ctx context.Context) ([][]byte, error)
	// keysCount returns the number of distinct present keys.
	keysCount(ctx context.Context) (uint64, error)
	// name identifies the strategy in logs and metric labels.
	name() string
	// close releases the strategy's connection pool.
	close() error
}

// Versioned is the constraint satisfied by strategies which retain prior
// versions of written values, and which therefore support garbage
// collection of superseded entries. Of the built-in strategies only
// Append satisfies it.
type Versioned interface {
	Strategy
	// collectGarbage discards all but the current value entry of each key.
	collectGarbage(ctx context.Context) error
	// entriesCount returns the total number of value entries across all
	// keys, including superseded versions.
	entriesCount(ctx context.Context) (uint64, error)
}
