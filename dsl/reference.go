package dsl

import (
	"context"
	"fmt"

	serializr "github.com/reoring/serializr"
	"github.com/reoring/serializr/i18n"
)

// LookupFunc resolves a reference identifier into a target. The default
// lookup awaits (model, id) in the root context of the current call.
type LookupFunc func(ctx context.Context, id any, dc *serializr.Context, done serializr.Done)

// RefOption configures Reference.
type RefOption func(*refConfig) error

type refConfig struct {
	lookup LookupFunc
	args   []*serializr.AdditionalArgs
}

// WithLookup replaces the default root-context lookup.
func WithLookup(fn LookupFunc) RefOption {
	return func(c *refConfig) error {
		if err := serializr.Invariant(fn != nil, "lookup function should be omitted or a function"); err != nil {
			return err
		}
		c.lookup = fn
		return nil
	}
}

// WithRefArgs applies additional property arguments.
func WithRefArgs(args *serializr.AdditionalArgs) RefOption {
	return func(c *refConfig) error {
		if err := serializr.Invariant(args != nil, "additional property arguments should be an object"); err != nil {
			return err
		}
		c.args = append(c.args, args)
		return nil
	}
}

// NewReference serializes an object of model s as its identifier and
// deserializes an identifier back into the object registered under it,
// waiting for the registration when the object appears later in the input.
func NewReference(s *serializr.ModelSchema, opts ...RefOption) (serializr.PropSchema, error) {
	if err := serializr.Invariant(s != nil, "reference requires a model schema"); err != nil {
		return serializr.PropSchema{}, err
	}
	return NewReferenceLazy(func() *serializr.ModelSchema { return s }, opts...)
}

// Reference is NewReference that panics on malformed arguments.
func Reference(s *serializr.ModelSchema, opts ...RefOption) serializr.PropSchema {
	ps, err := NewReference(s, opts...)
	if err != nil {
		panic(err)
	}
	return ps
}

// NewReferenceLazy is NewReference for schemas that are declared later (for
// example mutually referencing models).
func NewReferenceLazy(schema func() *serializr.ModelSchema, opts ...RefOption) (serializr.PropSchema, error) {
	if err := serializr.Invariant(schema != nil, "reference requires a model schema"); err != nil {
		return serializr.PropSchema{}, err
	}
	var cfg refConfig
	for _, o := range opts {
		if err := serializr.Invariant(o != nil, "reference option must not be nil"); err != nil {
			return serializr.PropSchema{}, err
		}
		if err := o(&cfg); err != nil {
			return serializr.PropSchema{}, err
		}
	}
	lookup := cfg.lookup
	if lookup == nil {
		lookup = func(_ context.Context, id any, dc *serializr.Context, done serializr.Done) {
			dc.Await(schema(), id, func(target any) { done(target, nil) })
		}
	}
	ps, err := serializr.NewPropSchema(
		func(_ context.Context, v any, _ any) (any, error) {
			if isNil(v) {
				return nil, nil
			}
			s := schema()
			id, ok := s.Identify(v)
			if !ok {
				return nil, fmt.Errorf("serializr: %T is not identifiable as %s", v, s.Name())
			}
			return id, nil
		},
		func(ctx context.Context, jsonValue any, dc *serializr.Context, done serializr.Done) {
			if jsonValue == nil {
				done(nil, nil)
				return
			}
			if !serializr.IsPrimitive(jsonValue) {
				done(nil, serializr.Issues{{Path: "/", Code: serializr.CodeInvalidType, Message: i18n.T(serializr.CodeInvalidType, nil), Params: map[string]any{"expected": "identifier"}}})
				return
			}
			lookup(ctx, jsonValue, dc, done)
		},
	)
	if err != nil {
		return serializr.PropSchema{}, err
	}
	return applyArgs(ps, cfg.args)
}

// ReferenceLazy is NewReferenceLazy that panics on malformed arguments.
func ReferenceLazy(schema func() *serializr.ModelSchema, opts ...RefOption) serializr.PropSchema {
	ps, err := NewReferenceLazy(schema, opts...)
	if err != nil {
		panic(err)
	}
	return ps
}
