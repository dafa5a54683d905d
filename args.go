package serializr

import "context"

// BeforeDeserializeFunc runs ahead of a property deserializer. It hands the
// (possibly substituted) JSON value to next, or fails through next's error.
type BeforeDeserializeFunc func(ctx context.Context, jsonValue any, dc *Context, next func(jsonValue any, err error))

// AfterDeserializeFunc receives the deserializer outcome and decides the final
// result reported through done. It may recover from err.
type AfterDeserializeFunc func(ctx context.Context, err error, value any, jsonValue any, dc *Context, done Done)

// AdditionalArgs carries optional lifecycle overrides applied by Merge.
type AdditionalArgs struct {
	BeforeDeserialize BeforeDeserializeFunc
	AfterDeserialize  AfterDeserializeFunc
	Serializer        SerializeFunc
	Deserializer      DeserializeFunc
}

// Merge applies extra on top of base and returns the combined schema. base is
// never modified. Serializer/Deserializer replace the base functions; the
// hooks wrap the resulting deserializer as before -> deserialize -> after.
func Merge(base PropSchema, extra *AdditionalArgs) (PropSchema, error) {
	if err := Invariant(base.Valid(), "expected a property schema"); err != nil {
		return PropSchema{}, err
	}
	if extra == nil {
		return base, nil
	}
	out := base
	if extra.Serializer != nil {
		out.serialize = extra.Serializer
	}
	if extra.Deserializer != nil {
		out.deserialize = extra.Deserializer
	}
	if extra.BeforeDeserialize != nil || extra.AfterDeserialize != nil {
		out.deserialize = wrapHooks(out.deserialize, extra.BeforeDeserialize, extra.AfterDeserialize)
	}
	return out, nil
}

// mergeAll folds every args value into base; nil entries are invariant
// violations because callers passed them explicitly.
func mergeAll(base PropSchema, args []*AdditionalArgs) (PropSchema, error) {
	out := base
	for _, a := range args {
		if err := Invariant(a != nil, "additional property arguments must not be nil"); err != nil {
			return PropSchema{}, err
		}
		var err error
		if out, err = Merge(out, a); err != nil {
			return PropSchema{}, err
		}
	}
	return out, nil
}

func wrapHooks(inner DeserializeFunc, before BeforeDeserializeFunc, after AfterDeserializeFunc) DeserializeFunc {
	return func(ctx context.Context, jsonValue any, dc *Context, done Done) {
		run := func(jv any) {
			if after == nil {
				inner(ctx, jv, dc, done)
				return
			}
			inner(ctx, jv, dc, func(v any, err error) {
				after(ctx, err, v, jv, dc, done)
			})
		}
		if before == nil {
			run(jsonValue)
			return
		}
		before(ctx, jsonValue, dc, func(jv any, err error) {
			if err != nil {
				done(nil, err)
				return
			}
			run(jv)
		})
	}
}
