package sqlkv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.sqlkv.dev/sqlkv/codec"
)

type testEvent struct {
	Name  string
	Count int
	Tags  []string
}

func TestTypedRoundTripAcrossStrategies(t *testing.T) {
	var ctx = context.Background()
	var event = testEvent{Name: "compaction", Count: 3, Tags: []string{"a", "b"}}

	t.Run("update_in_place", func(t *testing.T) {
		var db, err = Open[UpdateInPlace](ctx, Config{InMemory: true})
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, db.Write(ctx, []byte("event"), event))

		var out testEvent
		found, err := db.Read(ctx, []byte("event"), &out)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, event, out)
	})

	t.Run("append", func(t *testing.T) {
		var db, err = Open[Append](ctx, Config{InMemory: true})
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, db.Write(ctx, []byte("event"), event))

		var out testEvent
		found, err := db.Read(ctx, []byte("event"), &out)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, event, out)
	})
}

func TestReadOfAbsentKeyIsNotAnError(t *testing.T) {
	var ctx = context.Background()
	var db, err = Open[UpdateInPlace](ctx, Config{InMemory: true})
	require.NoError(t, err)
	defer db.Close()

	var value string
	found, err := db.Read(ctx, []byte("missing"), &value)
	require.NoError(t, err)
	require.False(t, found)
	require.Empty(t, value)
}

func TestReadIntoMismatchedTypeFailsWithDecodingError(t *testing.T) {
	var ctx = context.Background()
	var db, err = Open[UpdateInPlace](ctx, Config{InMemory: true})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Write(ctx, []byte("k"), "a string"))

	var into int
	_, err = db.Read(ctx, []byte("k"), &into)

	var decErr *codec.DecodingError
	require.ErrorAs(t, err, &decErr)
}

func TestWriteOfUnencodableValueFailsWithEncodingError(t *testing.T) {
	var ctx = context.Background()
	var db, err = Open[UpdateInPlace](ctx, Config{InMemory: true})
	require.NoError(t, err)
	defer db.Close()

	var encErr *codec.EncodingError
	require.ErrorAs(t, db.Write(ctx, []byte("k"), make(chan int)), &encErr)

	// The failed write left no row behind.
	count, err := db.KeysCount(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestBinaryKeysComparedByteForByte(t *testing.T) {
	var ctx = context.Background()
	var db, err = Open[UpdateInPlace](ctx, Config{InMemory: true})
	require.NoError(t, err)
	defer db.Close()

	var k1 = []byte{0x00, 0x01, 0xff}
	var k2 = []byte{0x00, 0x01, 0xfe}

	require.NoError(t, db.Write(ctx, k1, "one"))
	require.NoError(t, db.Write(ctx, k2, "two"))

	var value string
	found, err := db.Read(ctx, k1, &value)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "one", value)

	count, err := db.KeysCount(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), count)
}
