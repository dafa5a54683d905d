package serializr

import "context"

// RegisterFunc observes an identifier as soon as it is known. The target may
// still have other properties pending. A non-nil error fails the property.
type RegisterFunc func(id any, target any, dc *Context) error

// IdentifierOption configures Identifier.
type IdentifierOption func(*identifierConfig) error

type identifierConfig struct {
	register RegisterFunc
	args     []*AdditionalArgs
}

// WithRegister installs a RegisterFunc (for example to index objects into an
// external store).
func WithRegister(fn RegisterFunc) IdentifierOption {
	return func(c *identifierConfig) error {
		if err := Invariant(fn != nil, "register function should be omitted or a function"); err != nil {
			return err
		}
		c.register = fn
		return nil
	}
}

// WithArgs applies additional property arguments through Merge.
func WithArgs(args *AdditionalArgs) IdentifierOption {
	return func(c *identifierConfig) error {
		if err := Invariant(args != nil, "additional property arguments should be an object"); err != nil {
			return err
		}
		c.args = append(c.args, args)
		return nil
	}
}

// NewIdentifier builds a primitive-like property schema marked as the
// identifier of its model. Deserializing it registers (model, id) -> target
// in the root context before the optional RegisterFunc and before completion.
// A null identifier completes without registering.
func NewIdentifier(opts ...IdentifierOption) (PropSchema, error) {
	var cfg identifierConfig
	for _, o := range opts {
		if err := Invariant(o != nil, "identifier option must not be nil"); err != nil {
			return PropSchema{}, err
		}
		if err := o(&cfg); err != nil {
			return PropSchema{}, err
		}
	}
	register := cfg.register
	ps := PropSchema{
		identifier: true,
		serialize:  DefaultPrimitive.serialize,
		deserialize: func(ctx context.Context, jsonValue any, dc *Context, done Done) {
			DefaultPrimitive.deserialize(ctx, jsonValue, dc, func(id any, err error) {
				if err != nil {
					done(id, err)
					return
				}
				// objects without an identity are not registered
				if id == nil {
					done(nil, nil)
					return
				}
				if err := dc.Root().Resolve(dc.ModelSchema(), id, dc.Target()); err != nil {
					done(id, err)
					return
				}
				if register != nil {
					if err := register(id, dc.Target(), dc); err != nil {
						done(id, err)
						return
					}
				}
				done(id, nil)
			})
		},
	}
	ps, err := mergeAll(ps, cfg.args)
	if err != nil {
		return PropSchema{}, err
	}
	return ps, nil
}

// Identifier is NewIdentifier that panics with an *InvariantError on
// malformed options.
func Identifier(opts ...IdentifierOption) PropSchema {
	ps, err := NewIdentifier(opts...)
	if err != nil {
		panic(err)
	}
	return ps
}
