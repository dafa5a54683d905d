package dsl

import (
	"context"
	"reflect"
	"strconv"

	serializr "github.com/reoring/serializr"
	"github.com/reoring/serializr/i18n"
)

// List transports a JSON array whose items use the item property schema.
// Deserialization completes once every item completed, in input order.
func List(item serializr.PropSchema, args ...*serializr.AdditionalArgs) serializr.PropSchema {
	if err := serializr.Invariant(item.Valid(), "list requires an item property schema"); err != nil {
		panic(err)
	}
	ps := serializr.MustPropSchema(
		func(ctx context.Context, v any, source any) (any, error) {
			if isNil(v) {
				return nil, nil
			}
			rv := reflect.ValueOf(v)
			if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
				return nil, serializr.Issues{{Path: "/", Code: serializr.CodeInvalidType, Message: i18n.T(serializr.CodeInvalidType, nil), Params: map[string]any{"expected": "list"}}}
			}
			out := make([]any, 0, rv.Len())
			var iss serializr.Issues
			for i := 0; i < rv.Len(); i++ {
				jv, err := item.Serialize(ctx, rv.Index(i).Interface(), source)
				if err != nil {
					iss = append(iss, rebase(err, "/"+strconv.Itoa(i))...)
					continue
				}
				if jv == serializr.Skip {
					continue
				}
				out = append(out, jv)
			}
			if len(iss) > 0 {
				return nil, iss
			}
			return out, nil
		},
		func(ctx context.Context, jsonValue any, dc *serializr.Context, done serializr.Done) {
			if jsonValue == nil {
				done(nil, nil)
				return
			}
			arr, ok := jsonValue.([]any)
			if !ok {
				done(nil, serializr.Issues{{Path: "/", Code: serializr.CodeInvalidType, Message: i18n.T(serializr.CodeInvalidType, nil), Params: map[string]any{"expected": "array"}}})
				return
			}
			dc.Each(ctx, serializr.IndexKeys(len(arr)), func(i int, ic *serializr.Context, idone serializr.Done) {
				item.Deserialize(ctx, arr[i], ic, idone)
			}, done)
		},
	)
	return mustProp(ps, args)
}
