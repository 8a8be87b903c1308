// Package codec maps typed values to and from the opaque, self-describing
// binary representation persisted by the store. Values are encoded as CBOR
// (RFC 8949). The encoding is stable within a process lifetime: any value
// accepted by Encode round-trips through Decode unchanged.
package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// EncodingError indicates a value cannot be represented in the persisted
// binary form (eg, it contains a channel, function, or other unsupported
// shape).
type EncodingError struct{ Err error }

// Error implements the error interface.
func (e *EncodingError) Error() string { return "encoding value: " + e.Err.Error() }

// Unwrap returns the underlying encoder error.
func (e *EncodingError) Unwrap() error { return e.Err }

// DecodingError indicates persisted bytes are malformed, or do not match
// the shape of the value being decoded into.
type DecodingError struct{ Err error }

// Error implements the error interface.
func (e *DecodingError) Error() string { return "decoding value: " + e.Err.Error() }

// Unwrap returns the underlying decoder error.
func (e *DecodingError) Unwrap() error { return e.Err }

// Encode serializes the value into a self-describing binary blob.
func Encode(value interface{}) ([]byte, error) {
	var b, err = cbor.Marshal(value)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	return b, nil
}

// Decode de-serializes data into the value pointed to by |into|,
// which must be a non-nil pointer.
func Decode(data []byte, into interface{}) error {
	if err := cbor.Unmarshal(data, into); err != nil {
		return &DecodingError{Err: err}
	}
	return nil
}
