// Package codec converts between a wire representation (what appears in the
// plain JSON value) and a domain representation (what a property holds).
// dsl.FromCodec turns any Codec into a property schema.
package codec

import "context"

// Codec is a bidirectional conversion between a wire type W and a domain type
// D. Decode failures should be serializr.Issues rooted at "/".
type Codec[W, D any] interface {
	Decode(ctx context.Context, w W) (D, error)
	Encode(ctx context.Context, d D) (W, error)
}

// Identity returns a Codec[T,T] that passes values through.
func Identity[T any]() Codec[T, T] { return identityCodec[T]{} }

type identityCodec[T any] struct{}

func (identityCodec[T]) Decode(_ context.Context, v T) (T, error) { return v, nil }
func (identityCodec[T]) Encode(_ context.Context, v T) (T, error) { return v, nil }

// Func adapts a pair of functions into a Codec.
func Func[W, D any](decode func(context.Context, W) (D, error), encode func(context.Context, D) (W, error)) Codec[W, D] {
	return funcCodec[W, D]{decode: decode, encode: encode}
}

type funcCodec[W, D any] struct {
	decode func(context.Context, W) (D, error)
	encode func(context.Context, D) (W, error)
}

func (c funcCodec[W, D]) Decode(ctx context.Context, w W) (D, error) { return c.decode(ctx, w) }
func (c funcCodec[W, D]) Encode(ctx context.Context, d D) (W, error) { return c.encode(ctx, d) }
