package serializr

// Package serializr provides:
//
// - Schema-driven (de)serialization between model objects and plain JSON values
// - A property-schema protocol (PropSchema) with lifecycle hooks (Merge/AdditionalArgs)
// - Identifier properties and a per-call RootContext that resolves references by
//   (model, id), whether the referenced object appears before or after the reference
// - A stable error model via Issues (JSON Pointer, code, message)
//
// Design policy:
// - Keep the protocol (property schema, context, root context, drivers) in the root package;
//   put the remaining property kinds under dsl/.
// - Deserializers complete through a Done callback and may do so later from any goroutine;
//   a top-level call settles once the graph is built or can make no more progress.
// - A RootContext lives for exactly one top-level call.
//
// Typical usage:
//
//  todo := serializr.NewModel("Todo")
//  todo.Prop("id", serializr.Identifier()).
//      Prop("title", serializr.Primitive()).
//      Prop("parent", dsl.Reference(todo))
//
//  v, err := serializr.DeserializeJSON(ctx, todo, data)
//  out, err := serializr.SerializeJSON(ctx, todo, v)
//
