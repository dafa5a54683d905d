package serializr_test

import (
	"context"
	"errors"
	"testing"

	serializr "github.com/reoring/serializr"
)

// run invokes a property deserializer outside a top-level call and returns its
// synchronous outcome.
func run(t *testing.T, ps serializr.PropSchema, jsonValue any) (any, error) {
	t.Helper()
	dc := serializr.NewContext(serializr.NewRootContext(), serializr.NewModel("T"), map[string]any{})
	var (
		gotV   any
		gotErr error
		calls  int
	)
	ps.Deserialize(context.Background(), jsonValue, dc, func(v any, err error) {
		calls++
		gotV, gotErr = v, err
	})
	if calls != 1 {
		t.Fatalf("expected exactly one completion, got %d", calls)
	}
	return gotV, gotErr
}

func TestPrimitive_IdentityAndScalarCheck(t *testing.T) {
	ctx := context.Background()
	ps := serializr.Primitive()
	for _, v := range []any{"a", true, 1, 2.5, nil} {
		got, err := run(t, ps, v)
		if err != nil || got != v {
			t.Fatalf("deserialize %v: got %v err=%v", v, got, err)
		}
		out, err := ps.Serialize(ctx, v, nil)
		if err != nil || out != v {
			t.Fatalf("serialize %v: got %v err=%v", v, out, err)
		}
	}
	_, err := run(t, ps, map[string]any{"x": 1})
	iss, ok := serializr.AsIssues(err)
	if !ok || iss[0].Code != serializr.CodeInvalidType {
		t.Fatalf("expected invalid_type for object, got %v", err)
	}
}

func TestMerge_NilExtraAndZeroBase(t *testing.T) {
	base := serializr.Primitive()
	got, err := serializr.Merge(base, nil)
	if err != nil || !got.Valid() {
		t.Fatalf("merge nil: %v", err)
	}
	if _, err := serializr.Merge(serializr.PropSchema{}, &serializr.AdditionalArgs{}); !errors.Is(err, serializr.ErrInvariantViolation) {
		t.Fatalf("expected invariant violation for zero base, got %v", err)
	}
}

func TestMerge_DoesNotMutateBase(t *testing.T) {
	ctx := context.Background()
	base := serializr.Primitive()
	merged, err := serializr.Merge(base, &serializr.AdditionalArgs{
		Serializer: func(context.Context, any, any) (any, error) { return "override", nil },
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if v, _ := merged.Serialize(ctx, 1, nil); v != "override" {
		t.Fatalf("override not applied: %v", v)
	}
	if v, _ := base.Serialize(ctx, 1, nil); v != 1 {
		t.Fatalf("base mutated: %v", v)
	}
	// deserializer untouched
	if v, err := run(t, merged, "x"); err != nil || v != "x" {
		t.Fatalf("deserializer changed: %v %v", v, err)
	}
}

func TestMerge_HooksWrapDeserializer(t *testing.T) {
	var trace []string
	ps, err := serializr.Merge(serializr.Primitive(), &serializr.AdditionalArgs{
		BeforeDeserialize: func(_ context.Context, jv any, _ *serializr.Context, next func(any, error)) {
			trace = append(trace, "before")
			if m, ok := jv.(map[string]any); ok {
				jv = m["value"]
			}
			next(jv, nil)
		},
		AfterDeserialize: func(_ context.Context, err error, v any, jv any, _ *serializr.Context, done serializr.Done) {
			trace = append(trace, "after")
			if err != nil {
				done("recovered", nil)
				return
			}
			done(v, nil)
		},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	v, err := run(t, ps, map[string]any{"value": "inner"})
	if err != nil || v != "inner" {
		t.Fatalf("expected unwrapped value, got %v err=%v", v, err)
	}
	if len(trace) != 2 || trace[0] != "before" || trace[1] != "after" {
		t.Fatalf("unexpected hook order: %v", trace)
	}
	// non-scalar after unwrapping fails inside, after recovers
	v, err = run(t, ps, map[string]any{"value": []any{1}})
	if err != nil || v != "recovered" {
		t.Fatalf("expected recovery, got %v err=%v", v, err)
	}
}

func TestMerge_BeforeFailureSkipsDeserializer(t *testing.T) {
	called := false
	ps := serializr.Primitive(&serializr.AdditionalArgs{
		BeforeDeserialize: func(_ context.Context, _ any, _ *serializr.Context, next func(any, error)) {
			next(nil, errors.New("rejected"))
		},
		Deserializer: func(_ context.Context, jv any, _ *serializr.Context, done serializr.Done) {
			called = true
			done(jv, nil)
		},
	})
	if _, err := run(t, ps, 1); err == nil || err.Error() != "rejected" {
		t.Fatalf("expected before failure, got %v", err)
	}
	if called {
		t.Fatalf("deserializer must not run after before failure")
	}
}

func TestPrimitive_NilArgsPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, serializr.ErrInvariantViolation) {
			t.Fatalf("expected invariant panic, got %v", r)
		}
	}()
	serializr.Primitive(nil)
}
