package serializr

import (
	"bytes"
	"context"
	"errors"
	"io"

	j "github.com/goccy/go-json"
)

// DeserializeJSON decodes data (numbers kept as json.Number) and deserializes
// it with schema s.
func DeserializeJSON(ctx context.Context, s *ModelSchema, data []byte, opts ...DeserializeOption) (any, error) {
	return DeserializeReader(ctx, s, bytes.NewReader(data), opts...)
}

// DeserializeReader is DeserializeJSON over an io.Reader. Exactly one JSON
// value is accepted.
func DeserializeReader(ctx context.Context, s *ModelSchema, r io.Reader, opts ...DeserializeOption) (any, error) {
	v, err := DecodeJSON(r)
	if err != nil {
		return nil, err
	}
	return Deserialize(ctx, s, v, opts...)
}

// DecodeJSON reads a single JSON value into plain Go values.
func DecodeJSON(r io.Reader) (any, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: "trailing data after JSON value", Cause: err}}
	}
	return v, nil
}

// SerializeJSON serializes target with schema s and encodes the result.
func SerializeJSON(ctx context.Context, s *ModelSchema, target any) ([]byte, error) {
	v, err := Serialize(ctx, s, target)
	if err != nil {
		return nil, err
	}
	return j.Marshal(v)
}
