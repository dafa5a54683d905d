package dsl

import (
	"context"
	"fmt"

	serializr "github.com/reoring/serializr"
	"github.com/reoring/serializr/codec"
	"github.com/reoring/serializr/i18n"
)

// FromCodec builds a property whose JSON value is the wire side W of c and
// whose property value is the domain side D. nil passes through unchanged in
// both directions; *D values are dereferenced before encoding.
func FromCodec[W, D any](c codec.Codec[W, D], args ...*serializr.AdditionalArgs) serializr.PropSchema {
	if err := serializr.Invariant(c != nil, "codec must not be nil"); err != nil {
		panic(err)
	}
	ps := serializr.MustPropSchema(
		func(ctx context.Context, v any, _ any) (any, error) {
			if isNil(v) {
				return nil, nil
			}
			var d D
			switch t := v.(type) {
			case D:
				d = t
			case *D:
				d = *t
			default:
				return nil, serializr.Issues{{Path: "/", Code: serializr.CodeInvalidType, Message: i18n.T(serializr.CodeInvalidType, nil), Params: map[string]any{"expected": fmt.Sprintf("%T", d)}}}
			}
			return c.Encode(ctx, d)
		},
		func(ctx context.Context, jsonValue any, _ *serializr.Context, done serializr.Done) {
			if jsonValue == nil {
				done(nil, nil)
				return
			}
			w, ok := jsonValue.(W)
			if !ok {
				var zero W
				done(nil, serializr.Issues{{Path: "/", Code: serializr.CodeInvalidType, Message: i18n.T(serializr.CodeInvalidType, nil), Params: map[string]any{"expected": fmt.Sprintf("%T", zero), "got": fmt.Sprintf("%T", jsonValue)}}})
				return
			}
			d, err := c.Decode(ctx, w)
			if err != nil {
				done(nil, err)
				return
			}
			done(d, nil)
		},
	)
	return mustProp(ps, args)
}
