package serializr

import "context"

// Done completes one deserialization step. Implementations call it exactly
// once, synchronously or later from any goroutine.
type Done func(v any, err error)

// SerializeFunc converts a property value into its JSON-compatible form.
// source is the object owning the property. Returning Skip omits the property.
type SerializeFunc func(ctx context.Context, v any, source any) (any, error)

// DeserializeFunc converts a JSON value into a property value and reports the
// outcome through done. It may suspend before calling done.
type DeserializeFunc func(ctx context.Context, jsonValue any, dc *Context, done Done)

type skipMarker struct{}

// Skip is returned by a serializer to leave the property out of the output.
var Skip any = skipMarker{}

// PropSchema describes how one named property is transported. It is an
// immutable value: builders return modified copies.
type PropSchema struct {
	serialize   SerializeFunc
	deserialize DeserializeFunc
	identifier  bool
	jsonName    string
}

// NewPropSchema assembles a property schema from a serializer/deserializer pair.
func NewPropSchema(ser SerializeFunc, deser DeserializeFunc) (PropSchema, error) {
	if err := Invariant(ser != nil && deser != nil, "property schema requires both serializer and deserializer"); err != nil {
		return PropSchema{}, err
	}
	return PropSchema{serialize: ser, deserialize: deser}, nil
}

// MustPropSchema is NewPropSchema that panics on invalid arguments.
func MustPropSchema(ser SerializeFunc, deser DeserializeFunc) PropSchema {
	ps, err := NewPropSchema(ser, deser)
	if err != nil {
		panic(err)
	}
	return ps
}

// IsIdentifier reports whether the schema was produced by Identifier.
func (p PropSchema) IsIdentifier() bool { return p.identifier }

// JSONName returns the JSON key override ("" when the model key is used).
func (p PropSchema) JSONName() string { return p.jsonName }

// WithJSONName returns a copy of p that reads and writes the given JSON key.
func (p PropSchema) WithJSONName(name string) PropSchema {
	p.jsonName = name
	return p
}

// Valid reports whether p carries both directions.
func (p PropSchema) Valid() bool { return p.serialize != nil && p.deserialize != nil }

// Serialize runs the serializer.
func (p PropSchema) Serialize(ctx context.Context, v any, source any) (any, error) {
	return p.serialize(ctx, v, source)
}

// Deserialize runs the deserializer.
func (p PropSchema) Deserialize(ctx context.Context, jsonValue any, dc *Context, done Done) {
	p.deserialize(ctx, jsonValue, dc, done)
}
