package dsl

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	serializr "github.com/reoring/serializr"
	"github.com/reoring/serializr/i18n"
)

// Map transports a JSON object with arbitrary keys whose values use the value
// property schema. Deserialized values are map[string]any.
func Map(value serializr.PropSchema, args ...*serializr.AdditionalArgs) serializr.PropSchema {
	if err := serializr.Invariant(value.Valid(), "map requires a value property schema"); err != nil {
		panic(err)
	}
	ps := serializr.MustPropSchema(
		func(ctx context.Context, v any, source any) (any, error) {
			if isNil(v) {
				return nil, nil
			}
			rv := reflect.ValueOf(v)
			if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
				return nil, serializr.Issues{{Path: "/", Code: serializr.CodeInvalidType, Message: i18n.T(serializr.CodeInvalidType, nil), Params: map[string]any{"expected": "map"}}}
			}
			out := make(map[string]any, rv.Len())
			var iss serializr.Issues
			iter := rv.MapRange()
			for iter.Next() {
				k := iter.Key().String()
				jv, err := value.Serialize(ctx, iter.Value().Interface(), source)
				if err != nil {
					iss = append(iss, rebase(err, "/"+k)...)
					continue
				}
				if jv == serializr.Skip {
					continue
				}
				out[k] = jv
			}
			if len(iss) > 0 {
				sort.SliceStable(iss, func(i, j int) bool { return iss[i].Path < iss[j].Path })
				return nil, iss
			}
			return out, nil
		},
		func(ctx context.Context, jsonValue any, dc *serializr.Context, done serializr.Done) {
			if jsonValue == nil {
				done(nil, nil)
				return
			}
			obj, ok := jsonValue.(map[string]any)
			if !ok {
				done(nil, serializr.Issues{{Path: "/", Code: serializr.CodeInvalidType, Message: i18n.T(serializr.CodeInvalidType, nil), Params: map[string]any{"expected": "object"}}})
				return
			}
			keys := make([]string, 0, len(obj))
			for k := range obj {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			dc.Each(ctx, keys, func(i int, ic *serializr.Context, idone serializr.Done) {
				value.Deserialize(ctx, obj[keys[i]], ic, idone)
			}, func(v any, err error) {
				if err != nil {
					done(nil, err)
					return
				}
				vals, ok := v.([]any)
				if !ok {
					done(nil, fmt.Errorf("serializr: unexpected map fan-in result %T", v))
					return
				}
				out := make(map[string]any, len(keys))
				for i, k := range keys {
					out[k] = vals[i]
				}
				done(out, nil)
			})
		},
	)
	return mustProp(ps, args)
}
