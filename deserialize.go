package serializr

import (
	"context"
	"sort"

	"github.com/reoring/serializr/i18n"
)

// DeserializeOption configures a top-level deserialize call.
type DeserializeOption func(*deserializeConfig)

type deserializeConfig struct {
	failFast bool
	args     any
	root     *RootContext
}

// WithFailFast settles the call at the first issue.
func WithFailFast(enabled bool) DeserializeOption {
	return func(c *deserializeConfig) { c.failFast = enabled }
}

// WithUserArgs exposes arbitrary caller data through Context.Args.
func WithUserArgs(args any) DeserializeOption {
	return func(c *deserializeConfig) { c.args = args }
}

// WithRootContext uses a caller-created root context (for example one that
// was pre-seeded with Resolve). It must be fresh: a root context serves a
// single call.
func WithRootContext(rc *RootContext) DeserializeOption {
	return func(c *deserializeConfig) { c.root = rc }
}

// Future is the pending outcome of DeserializeAsync.
type Future struct {
	rc *RootContext
}

// Done is closed once the call settled.
func (f *Future) Done() <-chan struct{} { return f.rc.ready }

// Root returns the root context of the call.
func (f *Future) Root() *RootContext { return f.rc }

// Wait blocks until the call settled or ctx is done. On failure the error is
// Issues and the partially built value is still returned.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.rc.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	// let an in-flight property write finish before handing out the graph
	f.rc.writeMu.Lock()
	f.rc.writeMu.Unlock()
	return f.rc.outcome()
}

func failedFuture(err error) *Future {
	rc := NewRootContext()
	rc.started = true
	rc.issues = IssuesAt(err, "")
	rc.settled = true
	close(rc.ready)
	return &Future{rc: rc}
}

// DeserializeAsync starts deserializing jsonValue (a JSON object, an array of
// objects, or nil) with schema s and returns immediately. Deserializers may
// complete on other goroutines; the returned Future settles when the whole
// graph is built or can make no further progress.
func DeserializeAsync(ctx context.Context, s *ModelSchema, jsonValue any, opts ...DeserializeOption) *Future {
	return start(ctx, s, jsonValue, nil, opts)
}

// Deserialize is DeserializeAsync followed by Wait.
func Deserialize(ctx context.Context, s *ModelSchema, jsonValue any, opts ...DeserializeOption) (any, error) {
	return DeserializeAsync(ctx, s, jsonValue, opts...).Wait(ctx)
}

// DeserializeAs deserializes a single object and asserts its target type.
func DeserializeAs[T any](ctx context.Context, s *ModelSchema, jsonValue any, opts ...DeserializeOption) (T, error) {
	var zero T
	v, err := Deserialize(ctx, s, jsonValue, opts...)
	if err != nil {
		t, _ := v.(T)
		return t, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, Issues{{Path: "/", Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil), Params: map[string]any{"got": typeName(v)}}}
	}
	return t, nil
}

// Update deserializes the JSON object jsonValue into an existing target.
// Properties absent from jsonValue keep their current values.
func Update(ctx context.Context, s *ModelSchema, target any, jsonValue any, opts ...DeserializeOption) error {
	if target == nil {
		return Issues{{Path: "/", Code: CodeInvariantViolation, Message: "update requires a target"}}
	}
	_, err := start(ctx, s, jsonValue, target, opts).Wait(ctx)
	return err
}

func start(ctx context.Context, s *ModelSchema, jsonValue any, target any, opts []DeserializeOption) *Future {
	var cfg deserializeConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	if s == nil {
		return failedFuture(&InvariantError{Message: "nil model schema"})
	}
	if _, err := s.Build(); err != nil {
		return failedFuture(err)
	}
	rc := cfg.root
	if rc == nil {
		rc = NewRootContext()
	}
	if err := rc.begin(cfg.failFast, cfg.args); err != nil {
		return failedFuture(err)
	}
	f := &Future{rc: rc}

	rootDone := rc.track("", func(v any) {
		rc.mu.Lock()
		rc.result = v
		rc.mu.Unlock()
	}, nil)

	top := &Context{root: rc, schema: s}
	switch jv := jsonValue.(type) {
	case []any:
		if target != nil {
			rootDone(nil, Issues{{Path: "/", Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil), Params: map[string]any{"expected": "object"}}})
			return f
		}
		top.Each(ctx, IndexKeys(len(jv)), func(i int, item *Context, done Done) {
			deserializeObject(ctx, rc, nil, s, jv[i], item.path, nil, done)
		}, rootDone)
	default:
		deserializeObject(ctx, rc, nil, s, jsonValue, "", target, rootDone)
	}
	return f
}

// deserializeObject creates (or reuses) the target for obj, launches every
// property deserializer and reports the target through done right away.
func deserializeObject(ctx context.Context, rc *RootContext, parent *Context, s *ModelSchema, jsonValue any, path string, target any, done Done) {
	if jsonValue == nil {
		done(nil, nil)
		return
	}
	obj, ok := jsonValue.(map[string]any)
	if !ok {
		done(nil, Issues{{Path: "/", Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil), Params: map[string]any{"expected": "object", "got": typeName(jsonValue)}}})
		return
	}
	if _, err := s.Build(); err != nil {
		done(nil, err)
		return
	}
	dc := &Context{root: rc, parent: parent, schema: s, json: obj, path: path}
	if target == nil {
		t, err := s.newTarget(dc)
		if err != nil {
			done(nil, err)
			return
		}
		target = t
	}
	dc.target = target

	props := s.allProps()
	known := make(map[string]struct{}, len(props))
	for _, p := range props {
		key := jsonKey(p)
		known[key] = struct{}{}
		jv, present := obj[key]
		if !present {
			continue
		}
		pc := dc.at(key)
		name := p.name
		pd := rc.track(pc.path, func(v any) {
			rc.write(func() {
				if err := SetProp(target, name, v); err != nil {
					rc.fail(IssuesAt(err, pc.path))
				}
			})
		}, nil)
		p.ps.Deserialize(ctx, jv, pc, pd)
	}
	handleUnknown(rc, s, obj, known, target, path)
	done(target, nil)
}

func handleUnknown(rc *RootContext, s *ModelSchema, obj map[string]any, known map[string]struct{}, target any, path string) {
	if s.unknown == UnknownStrip {
		return
	}
	var extra []string
	for k := range obj {
		if _, ok := known[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	switch s.unknown {
	case UnknownStrict:
		var iss Issues
		for _, k := range extra {
			iss = append(iss, Issue{Path: path + "/" + escapePointerToken(k), Code: CodeUnknownKey, Message: i18n.T(CodeUnknownKey, nil)})
		}
		rc.fail(iss)
	case UnknownPassthrough:
		rc.write(func() {
			for _, k := range extra {
				if v := obj[k]; IsPrimitive(v) {
					// targets without a matching slot simply do not receive it
					_ = SetProp(target, k, v)
				}
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if IsPrimitive(v) {
		return "number"
	}
	return "unknown"
}
