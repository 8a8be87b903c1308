package sqlkv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUpdateInPlaceRoundTrip(t *testing.T) {
	var ctx = context.Background()
	var db, err = Open[UpdateInPlace](ctx, Config{InMemory: true})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Write(ctx, []byte("hello"), "world"))

	var value string
	found, err := db.Read(ctx, []byte("hello"), &value)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "world", value)
}

func TestUpdateInPlaceOverwriteKeepsOneRow(t *testing.T) {
	var ctx = context.Background()
	var db, err = Open[UpdateInPlace](ctx, Config{InMemory: true})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Write(ctx, []byte("hello"), "world"))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, db.Write(ctx, []byte("hello"), "joe"))

	var value string
	found, err := db.Read(ctx, []byte("hello"), &value)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "joe", value)

	count, err := db.KeysCount(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)

	// The overwrite refreshed updated_at but preserved inserted_at.
	var stale int
	require.NoError(t, db.s.pool.db.QueryRow(
		`SELECT COUNT(*) FROM kvs WHERE updated_at > inserted_at;`).Scan(&stale))
	require.Equal(t, 1, stale)
}

func TestUpdateInPlaceDeletes(t *testing.T) {
	var ctx = context.Background()
	var db, err = Open[UpdateInPlace](ctx, Config{InMemory: true})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Write(ctx, []byte("hello"), "world"))
	require.NoError(t, db.Delete(ctx, []byte("hello")))

	count, err := db.KeysCount(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	keys, err := db.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)

	var value string
	found, err := db.Read(ctx, []byte("hello"), &value)
	require.NoError(t, err)
	require.False(t, found)
}

func TestUpdateInPlaceDeleteOfAbsentKeyIsNoop(t *testing.T) {
	var ctx = context.Background()
	var db, err = Open[UpdateInPlace](ctx, Config{InMemory: true})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Write(ctx, []byte("present"), 1))
	require.NoError(t, db.Delete(ctx, []byte("absent")))

	count, err := db.KeysCount(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)
}

func TestUpdateInPlaceKeys(t *testing.T) {
	var ctx = context.Background()
	var db, err = Open[UpdateInPlace](ctx, Config{InMemory: true})
	require.NoError(t, err)
	defer db.Close()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, db.Write(ctx, []byte(k), k))
	}
	keys, err := db.Keys(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, keys)
}
