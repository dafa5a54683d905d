package serializr

import (
	"context"
	"encoding/json"

	"github.com/reoring/serializr/i18n"
)

// DefaultPrimitive is the baseline property schema for scalar values.
var DefaultPrimitive = PropSchema{
	serialize:   identitySerializer,
	deserialize: primitiveDeserializer,
}

// Primitive returns the scalar property schema with optional hooks applied.
// It panics with an *InvariantError on malformed args.
func Primitive(args ...*AdditionalArgs) PropSchema {
	ps, err := mergeAll(DefaultPrimitive, args)
	if err != nil {
		panic(err)
	}
	return ps
}

func identitySerializer(_ context.Context, v any, _ any) (any, error) { return v, nil }

func primitiveDeserializer(_ context.Context, jsonValue any, _ *Context, done Done) {
	if !IsPrimitive(jsonValue) {
		done(nil, Issues{{Path: "/", Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil), Params: map[string]any{"expected": "primitive"}}})
		return
	}
	done(jsonValue, nil)
}

// IsPrimitive reports whether v is a scalar JSON value.
func IsPrimitive(v any) bool {
	switch v.(type) {
	case nil, string, bool, json.Number,
		float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}
