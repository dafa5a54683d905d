package dsl

import (
	"context"

	serializr "github.com/reoring/serializr"
)

// Alias reads and writes the property under a different JSON key.
func Alias(jsonName string, ps serializr.PropSchema) serializr.PropSchema {
	if err := serializr.Invariant(jsonName != "", "alias requires a JSON name"); err != nil {
		panic(err)
	}
	if err := serializr.Invariant(ps.Valid(), "alias requires a property schema"); err != nil {
		panic(err)
	}
	return ps.WithJSONName(jsonName)
}

// Custom builds a property from synchronous conversion functions.
func Custom(ser func(v any) (any, error), deser func(jsonValue any, dc *serializr.Context) (any, error), args ...*serializr.AdditionalArgs) serializr.PropSchema {
	if err := serializr.Invariant(ser != nil && deser != nil, "custom requires a serializer and a deserializer"); err != nil {
		panic(err)
	}
	ps := serializr.MustPropSchema(
		func(_ context.Context, v any, _ any) (any, error) { return ser(v) },
		func(_ context.Context, jsonValue any, dc *serializr.Context, done serializr.Done) {
			done(deser(jsonValue, dc))
		},
	)
	return mustProp(ps, args)
}

// CustomAsync builds a property whose deserializer completes through done,
// possibly later and from another goroutine.
func CustomAsync(ser serializr.SerializeFunc, deser serializr.DeserializeFunc, args ...*serializr.AdditionalArgs) serializr.PropSchema {
	ps, err := serializr.NewPropSchema(ser, deser)
	if err != nil {
		panic(err)
	}
	return mustProp(ps, args)
}

// Raw passes JSON values through untouched in both directions.
func Raw(args ...*serializr.AdditionalArgs) serializr.PropSchema {
	ps := serializr.MustPropSchema(
		func(_ context.Context, v any, _ any) (any, error) { return v, nil },
		func(_ context.Context, jsonValue any, _ *serializr.Context, done serializr.Done) { done(jsonValue, nil) },
	)
	return mustProp(ps, args)
}

// Optional omits the property from the output when its value is nil.
func Optional(ps serializr.PropSchema) serializr.PropSchema {
	if err := serializr.Invariant(ps.Valid(), "optional requires a property schema"); err != nil {
		panic(err)
	}
	out, err := serializr.Merge(ps, &serializr.AdditionalArgs{
		Serializer: func(ctx context.Context, v any, source any) (any, error) {
			if isNil(v) {
				return serializr.Skip, nil
			}
			return ps.Serialize(ctx, v, source)
		},
	})
	if err != nil {
		panic(err)
	}
	return out
}
