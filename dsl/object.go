package dsl

import (
	"context"

	serializr "github.com/reoring/serializr"
)

// Object embeds a nested model of schema s.
func Object(s *serializr.ModelSchema, args ...*serializr.AdditionalArgs) serializr.PropSchema {
	if err := serializr.Invariant(s != nil, "object requires a model schema"); err != nil {
		panic(err)
	}
	ps := serializr.MustPropSchema(
		func(ctx context.Context, v any, _ any) (any, error) {
			if isNil(v) {
				return nil, nil
			}
			return serializr.SerializeObject(ctx, s, v, "")
		},
		func(ctx context.Context, jsonValue any, dc *serializr.Context, done serializr.Done) {
			dc.DeserializeChild(ctx, s, jsonValue, done)
		},
	)
	return mustProp(ps, args)
}
