// Package message defines the values exchanged between the RPC client and its transports.
//
// Call is the request side: the operation path plus the caller's argument value.
// Result is the response side and is what every operation method returns. It is a
// tagged union, either
//
//	{value: <response>, error: null}   on success
//	{value: null, error: "<message>"}  on failure
//
// and never both.
package message

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnknownError is the failure text used when nothing more specific is available.
const UnknownError = "Unknown error"

// Call carries a single request through the client pipeline.
type Call struct {
	Path string // Operation path, e.g. "/eins"
	Args any    // Argument value, serialized to JSON by the transport
}

// Result is the uniform success/failure wrapper returned by every operation.
type Result[T any] struct {
	Value T      // Zero value on failure
	Error string // Empty on success, never empty on failure
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail builds a failed result. An empty message becomes UnknownError.
func Fail[T any](msg string) Result[T] {
	if msg == "" {
		msg = UnknownError
	}
	return Result[T]{Error: msg}
}

// FailErr builds a failed result from an error.
func FailErr[T any](err error) Result[T] {
	if err == nil {
		return Fail[T]("")
	}
	return Fail[T](err.Error())
}

// OK reports whether the result is a success.
func (r Result[T]) OK() bool {
	return r.Error == ""
}

type resultWire struct {
	Value any     `json:"value"`
	Error *string `json:"error"`
}

// MarshalJSON renders the result with an explicit null on the unused side.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if !r.OK() {
		msg := r.Error
		return json.Marshal(resultWire{Error: &msg})
	}
	return json.Marshal(resultWire{Value: r.Value})
}

// UnmarshalJSON accepts the form produced by MarshalJSON.
func (r *Result[T]) UnmarshalJSON(data []byte) error {
	var wire struct {
		Value json.RawMessage `json:"value"`
		Error *string         `json:"error"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Error != nil {
		*r = Fail[T](*wire.Error)
		return nil
	}
	var v T
	if len(wire.Value) > 0 && !bytes.Equal(wire.Value, []byte("null")) {
		if err := json.Unmarshal(wire.Value, &v); err != nil {
			return err
		}
	}
	*r = Ok(v)
	return nil
}

// Convert turns an untyped pipeline result into a typed one.
//
// Failures carry over unchanged. A value that already has type T (or *T) is used as is,
// raw JSON is decoded into T, and anything else is re-encoded through JSON. A value that
// cannot be represented as T becomes a failure.
func Convert[T any](r Result[any]) Result[T] {
	if !r.OK() {
		return Fail[T](r.Error)
	}
	switch v := r.Value.(type) {
	case T:
		return Ok(v)
	case *T:
		if v != nil {
			return Ok(*v)
		}
	case json.RawMessage:
		return decode[T](v)
	case []byte:
		return decode[T](v)
	}
	data, err := json.Marshal(r.Value)
	if err != nil {
		return FailErr[T](err)
	}
	return decode[T](data)
}

func decode[T any](data []byte) Result[T] {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return FailErr[T](fmt.Errorf("decoding response: %w", err))
	}
	return Ok(v)
}
