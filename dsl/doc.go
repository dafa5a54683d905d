// Package dsl provides the property kinds built on the serializr protocol.
//
// Overview
//   - Reference(s): serialize an object as its identifier; deserialize an identifier into the object
//     registered under it in the root context, before or after the reference is read.
//   - Object(s): nested model. List(ps)/Map(ps): collections of any property kind.
//   - Date(): RFC3339 time values. Alias(name, ps): different JSON key. Raw(): untouched JSON.
//   - Custom/CustomAsync: user conversion functions. Optional(ps): omit nil values when serializing.
//   - FromCodec(c): any codec.Codec[W, D] as a property (Date is FromCodec(codec.TimeRFC3339())).
//
// Every kind accepts *serializr.AdditionalArgs (BeforeDeserialize/AfterDeserialize hooks,
// serializer/deserializer overrides) which are applied through serializr.Merge.
//
// Example
//
//	owner := serializr.NewModel("User")
//	owner.Prop("id", serializr.Identifier()).Prop("name", serializr.Primitive())
//
//	todo := serializr.NewModel("Todo")
//	todo.Prop("id", serializr.Identifier()).
//	    Prop("owner", dsl.Reference(owner)).
//	    Prop("tags", dsl.List(serializr.Primitive())).
//	    Prop("due", dsl.Optional(dsl.Date()))
//
//	store := serializr.NewModel("Store")
//	store.Prop("users", dsl.List(dsl.Object(owner))).
//	    Prop("todos", dsl.List(dsl.Object(todo)))
//
//	v, err := serializr.DeserializeJSON(ctx, store, data)
package dsl
