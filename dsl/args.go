package dsl

import (
	serializr "github.com/reoring/serializr"
)

// mustProp merges args into ps and panics with the *serializr.InvariantError
// on malformed input, matching serializr.Primitive.
func mustProp(ps serializr.PropSchema, args []*serializr.AdditionalArgs) serializr.PropSchema {
	out, err := applyArgs(ps, args)
	if err != nil {
		panic(err)
	}
	return out
}

func applyArgs(ps serializr.PropSchema, args []*serializr.AdditionalArgs) (serializr.PropSchema, error) {
	out := ps
	for _, a := range args {
		if err := serializr.Invariant(a != nil, "additional property arguments should be an object"); err != nil {
			return serializr.PropSchema{}, err
		}
		var err error
		if out, err = serializr.Merge(out, a); err != nil {
			return serializr.PropSchema{}, err
		}
	}
	return out, nil
}
