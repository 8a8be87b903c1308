package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrips(t *testing.T) {
	var cases = []struct {
		value interface{}
		into  func() interface{}
	}{
		{"a string", func() interface{} { return new(string) }},
		{int64(-42), func() interface{} { return new(int64) }},
		{[]byte{0x00, 0xff, 0x10}, func() interface{} { return new([]byte) }},
		{map[string]int{"a": 1, "b": 2}, func() interface{} { return new(map[string]int) }},
		{[]string{"x", "y"}, func() interface{} { return new([]string) }},
	}
	for _, tc := range cases {
		var b, err = Encode(tc.value)
		require.NoError(t, err)

		var into = tc.into()
		require.NoError(t, Decode(b, into))

		// |into| is a pointer to the decoded value.
		switch v := into.(type) {
		case *string:
			require.Equal(t, tc.value, *v)
		case *int64:
			require.Equal(t, tc.value, *v)
		case *[]byte:
			require.Equal(t, tc.value, *v)
		case *map[string]int:
			require.Equal(t, tc.value, *v)
		case *[]string:
			require.Equal(t, tc.value, *v)
		}
	}
}

func TestStructRoundTrip(t *testing.T) {
	type inner struct {
		Name string
		N    int
	}
	var in = inner{Name: "widget", N: 7}

	var b, err = Encode(in)
	require.NoError(t, err)

	var out inner
	require.NoError(t, Decode(b, &out))
	require.Equal(t, in, out)
}

func TestEncodeOfUnsupportedShapeFails(t *testing.T) {
	var _, err = Encode(make(chan int))

	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
}

func TestDecodeOfMalformedBytesFails(t *testing.T) {
	// A definite-length array of two elements, with only one present.
	var into []int
	var err = Decode([]byte{0x82, 0x01}, &into)

	var decErr *DecodingError
	require.ErrorAs(t, err, &decErr)
}

func TestDecodeIntoMismatchedTypeFails(t *testing.T) {
	var b, err = Encode("not a number")
	require.NoError(t, err)

	var into int
	err = Decode(b, &into)

	var decErr *DecodingError
	require.ErrorAs(t, err, &decErr)
}
