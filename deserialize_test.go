package serializr_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	serializr "github.com/reoring/serializr"
	"github.com/reoring/serializr/dsl"
)

func nodeModel() *serializr.ModelSchema {
	s := serializr.NewModel("Node")
	s.Prop("id", serializr.Identifier()).
		Prop("ref", dsl.Reference(s))
	return s
}

func TestDeserialize_ForwardReference(t *testing.T) {
	ctx := context.Background()
	in := []any{
		map[string]any{"id": 2, "ref": 1},
		map[string]any{"id": 1},
	}
	v, err := serializr.Deserialize(ctx, nodeModel(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := v.([]any)
	x, y := out[0].(map[string]any), out[1].(map[string]any)
	if !samePtr(x["ref"], y) {
		t.Fatalf("forward reference not resolved to the later object: %v", x["ref"])
	}
}

func TestDeserialize_BackwardAndSelfReference(t *testing.T) {
	in := []any{
		map[string]any{"id": "a", "ref": "a"},
		map[string]any{"id": "b", "ref": "a"},
	}
	v, err := serializr.Deserialize(context.Background(), nodeModel(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := v.([]any)
	a, b := out[0].(map[string]any), out[1].(map[string]any)
	if !samePtr(a["ref"], a) || !samePtr(b["ref"], a) {
		t.Fatalf("references not resolved")
	}
}

func TestDeserialize_UnresolvedReference(t *testing.T) {
	in := []any{map[string]any{"id": 1, "ref": 99}}
	v, err := serializr.Deserialize(context.Background(), nodeModel(), in)
	if !errors.Is(err, serializr.ErrUnresolvedReference) {
		t.Fatalf("expected unresolved reference, got %v", err)
	}
	iss, _ := serializr.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/0/ref" || iss[0].Code != serializr.CodeUnresolvedReference {
		t.Fatalf("unexpected issues: %+v", iss)
	}
	if iss[0].Params["model"] != "Node" || iss[0].Params["id"] != 99 {
		t.Fatalf("unexpected params: %+v", iss[0].Params)
	}
	// the partial graph is still returned
	out, ok := v.([]any)
	if !ok || len(out) != 1 || out[0].(map[string]any)["id"] != 1 {
		t.Fatalf("expected partial result, got %v", v)
	}
}

func TestDeserialize_CallsDoNotShareRegistrations(t *testing.T) {
	ctx := context.Background()
	s := nodeModel()
	if _, err := serializr.Deserialize(ctx, s, map[string]any{"id": 1}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := serializr.Deserialize(ctx, s, map[string]any{"id": 2, "ref": 1})
	if !errors.Is(err, serializr.ErrUnresolvedReference) {
		t.Fatalf("second call must not see the first call's objects, got %v", err)
	}
}

func TestDeserialize_DuplicateIdentifier(t *testing.T) {
	in := []any{map[string]any{"id": 1}, map[string]any{"id": 1}}
	_, err := serializr.Deserialize(context.Background(), nodeModel(), in)
	if !errors.Is(err, serializr.ErrDuplicateIdentifier) {
		t.Fatalf("expected duplicate identifier, got %v", err)
	}
	iss, _ := serializr.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/1/id" {
		t.Fatalf("unexpected issues: %+v", iss)
	}
}

func TestDeserialize_PreseededRootContext(t *testing.T) {
	ctx := context.Background()
	user := serializr.NewModel("User")
	user.Prop("id", serializr.Identifier())
	todo := serializr.NewModel("Todo")
	todo.Prop("title", serializr.Primitive()).Prop("owner", dsl.Reference(user))

	alice := map[string]any{"id": "alice"}
	rc := serializr.NewRootContext()
	if err := rc.Resolve(user, "alice", alice); err != nil {
		t.Fatalf("seed: %v", err)
	}
	v, err := serializr.Deserialize(ctx, todo, map[string]any{"title": "x", "owner": "alice"}, serializr.WithRootContext(rc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !samePtr(v.(map[string]any)["owner"], alice) {
		t.Fatalf("owner not taken from the seeded registry")
	}

	// a root context serves one call only
	_, err = serializr.Deserialize(ctx, todo, map[string]any{}, serializr.WithRootContext(rc))
	if !errors.Is(err, serializr.ErrInvariantViolation) {
		t.Fatalf("expected invariant violation on reuse, got %v", err)
	}
}

func TestUpdate_SameInstanceAlreadyRegistered(t *testing.T) {
	ctx := context.Background()
	s := nodeModel()
	s.Prop("title", serializr.Primitive())
	target := map[string]any{"id": 5, "title": "old", "keep": true}
	rc := serializr.NewRootContext()
	if err := rc.Resolve(s, 5, target); err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := serializr.Update(ctx, s, target, map[string]any{"id": 5, "title": "new"}, serializr.WithRootContext(rc))
	if err != nil {
		t.Fatalf("re-registering the same instance must succeed: %v", err)
	}
	if target["title"] != "new" || target["keep"] != true {
		t.Fatalf("unexpected target: %v", target)
	}
	if err := serializr.Update(ctx, s, nil, map[string]any{}); !errors.Is(err, serializr.ErrInvariantViolation) {
		t.Fatalf("nil target: %v", err)
	}
}

func TestDeserialize_UnknownPolicies(t *testing.T) {
	ctx := context.Background()
	strict := serializr.NewModel("S").Prop("a", serializr.Primitive()).UnknownStrict()
	in := []any{
		map[string]any{"a": 1, "x": 1},
		map[string]any{"a": 2, "y": 2},
	}
	_, err := serializr.Deserialize(ctx, strict, in)
	iss, _ := serializr.AsIssues(err)
	if len(iss) != 2 || iss[0].Path != "/0/x" || iss[1].Path != "/1/y" || iss[0].Code != serializr.CodeUnknownKey {
		t.Fatalf("unexpected strict issues: %+v", iss)
	}

	_, err = serializr.Deserialize(ctx, strict, in, serializr.WithFailFast(true))
	iss, _ = serializr.AsIssues(err)
	if len(iss) != 1 {
		t.Fatalf("fail fast should stop at the first issue, got %+v", iss)
	}

	pass := serializr.NewModel("P").Prop("a", serializr.Primitive()).UnknownPassthrough()
	v, err := serializr.Deserialize(ctx, pass, map[string]any{"a": 1, "b": "x", "c": map[string]any{}})
	if err != nil {
		t.Fatalf("passthrough: %v", err)
	}
	m := v.(map[string]any)
	if m["b"] != "x" {
		t.Fatalf("primitive extra not copied: %v", m)
	}
	if _, ok := m["c"]; ok {
		t.Fatalf("non-primitive extra must not be copied: %v", m)
	}

	strip := serializr.NewModel("D").Prop("a", serializr.Primitive())
	v, err = serializr.Deserialize(ctx, strip, map[string]any{"a": 1, "b": 2})
	if err != nil || len(v.(map[string]any)) != 1 {
		t.Fatalf("strip: %v %v", v, err)
	}
}

type todoItem struct {
	ID     int       `json:"id"`
	Title  string    `json:"title"`
	Parent *todoItem `json:"parent"`
	Tags   []string  `json:"tags"`
	Due    time.Time `serializr:"name=due"`
}

func todoModel() *serializr.ModelSchema {
	s := serializr.NewModel("Todo")
	s.Prop("id", serializr.Identifier()).
		Prop("title", serializr.Primitive()).
		Prop("parent", dsl.Reference(s)).
		Prop("tags", dsl.List(serializr.Primitive())).
		Prop("due", dsl.Optional(dsl.Date())).
		Factory(func(*serializr.Context) (any, error) { return &todoItem{}, nil })
	return s
}

func TestDeserializeJSON_StructTargets(t *testing.T) {
	data := []byte(`[
		{"id": 2, "title": "child", "parent": 1, "tags": ["a", "b"]},
		{"id": 1, "title": "root", "due": "2024-05-01T10:00:00Z"}
	]`)
	v, err := serializr.DeserializeJSON(context.Background(), todoModel(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := v.([]any)
	child, root := out[0].(*todoItem), out[1].(*todoItem)
	if child.ID != 2 || child.Parent != root || root.Title != "root" {
		t.Fatalf("unexpected graph: %+v %+v", child, root)
	}
	if len(child.Tags) != 2 || child.Tags[1] != "b" {
		t.Fatalf("tags not converted: %#v", child.Tags)
	}
	if !root.Due.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("due not parsed: %v", root.Due)
	}
}

func TestDeserializeAs(t *testing.T) {
	ctx := context.Background()
	got, err := serializr.DeserializeAs[*todoItem](ctx, todoModel(), map[string]any{"id": 3, "title": "t"})
	if err != nil || got.ID != 3 || got.Title != "t" {
		t.Fatalf("unexpected: %+v %v", got, err)
	}
	if _, err := serializr.DeserializeAs[string](ctx, todoModel(), map[string]any{"id": 3}); err == nil {
		t.Fatalf("expected a type mismatch")
	}
	got, err = serializr.DeserializeAs[*todoItem](ctx, todoModel(), nil)
	if err != nil || got != nil {
		t.Fatalf("nil input: %v %v", got, err)
	}
}

func TestDeserialize_AsyncPropertyFromGoroutine(t *testing.T) {
	upper := dsl.CustomAsync(
		func(_ context.Context, v any, _ any) (any, error) { return v, nil },
		func(_ context.Context, jv any, _ *serializr.Context, done serializr.Done) {
			go func() {
				time.Sleep(2 * time.Millisecond)
				done(strings.ToUpper(jv.(string)), nil)
			}()
		},
	)
	s := serializr.NewModel("Item").Prop("name", upper)
	f := serializr.DeserializeAsync(context.Background(), s, []any{
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
	})
	v, err := f.Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := v.([]any)
	if out[0].(map[string]any)["name"] != "A" || out[1].(map[string]any)["name"] != "B" {
		t.Fatalf("async values missing: %v", out)
	}
	select {
	case <-f.Done():
	default:
		t.Fatalf("future should be settled")
	}
}

func TestDeserialize_WaitHonorsContext(t *testing.T) {
	never := dsl.CustomAsync(
		func(_ context.Context, v any, _ any) (any, error) { return v, nil },
		func(context.Context, any, *serializr.Context, serializr.Done) {},
	)
	s := serializr.NewModel("Stuck").Prop("x", never)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if _, err := serializr.Deserialize(ctx, s, map[string]any{"x": 1}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
}

func TestDeserialize_UserArgsAndContext(t *testing.T) {
	var seen any
	var parentModel string
	probe := dsl.Custom(
		func(v any) (any, error) { return v, nil },
		func(jv any, dc *serializr.Context) (any, error) {
			seen = dc.Args()
			if p := dc.Parent(); p != nil {
				parentModel = p.ModelSchema().Name()
			}
			return jv, nil
		},
	)
	inner := serializr.NewModel("Inner").Prop("p", probe)
	outer := serializr.NewModel("Outer").Prop("in", dsl.Object(inner))
	_, err := serializr.Deserialize(context.Background(), outer, map[string]any{"in": map[string]any{"p": 1}}, serializr.WithUserArgs("tenant-a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "tenant-a" || parentModel != "Outer" {
		t.Fatalf("context not propagated: args=%v parent=%q", seen, parentModel)
	}
}

func TestDeserialize_InheritedIdentifierSatisfiesParentReference(t *testing.T) {
	animal := serializr.NewModel("Animal")
	animal.Prop("id", serializr.Identifier()).Prop("name", serializr.Primitive())
	dog := serializr.NewModel("Dog").Extends(animal).Prop("breed", serializr.Primitive())
	zoo := serializr.NewModel("Zoo").
		Prop("star", dsl.Reference(animal)).
		Prop("dogs", dsl.List(dsl.Object(dog)))

	v, err := serializr.Deserialize(context.Background(), zoo, map[string]any{
		"star": "rex",
		"dogs": []any{map[string]any{"id": "rex", "name": "Rex", "breed": "corgi"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := v.(map[string]any)
	dogs := m["dogs"].([]any)
	if !samePtr(m["star"], dogs[0]) {
		t.Fatalf("star should be the dog instance")
	}
	if dogs[0].(map[string]any)["name"] != "Rex" {
		t.Fatalf("inherited property missing: %v", dogs[0])
	}
}

func TestDeserialize_NestedUnresolvedPath(t *testing.T) {
	user := serializr.NewModel("User")
	user.Prop("id", serializr.Identifier())
	task := serializr.NewModel("Task").Prop("owner", dsl.Reference(user))
	board := serializr.NewModel("Board").Prop("tasks", dsl.List(dsl.Object(task)))

	_, err := serializr.Deserialize(context.Background(), board, map[string]any{
		"tasks": []any{map[string]any{}, map[string]any{"owner": "ghost"}},
	})
	iss, _ := serializr.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/tasks/1/owner" {
		t.Fatalf("unexpected issues: %+v", iss)
	}
}

func TestDeserialize_NilAndInvalidInput(t *testing.T) {
	ctx := context.Background()
	v, err := serializr.Deserialize(ctx, nodeModel(), nil)
	if v != nil || err != nil {
		t.Fatalf("nil input: %v %v", v, err)
	}
	_, err = serializr.Deserialize(ctx, nodeModel(), "text")
	iss, _ := serializr.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != serializr.CodeInvalidType || iss[0].Path != "/" {
		t.Fatalf("unexpected issues: %+v", iss)
	}
	_, err = serializr.Deserialize(ctx, nil, map[string]any{})
	if !errors.Is(err, serializr.ErrInvariantViolation) {
		t.Fatalf("nil schema: %v", err)
	}
	twoIDs := serializr.NewModel("Bad").Prop("a", serializr.Identifier()).Prop("b", serializr.Identifier())
	if _, err := serializr.Deserialize(ctx, twoIDs, map[string]any{}); !errors.Is(err, serializr.ErrInvariantViolation) {
		t.Fatalf("two identifiers: %v", err)
	}
}
