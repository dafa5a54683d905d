package serializr

import (
	"context"
	"strconv"
	"sync"
)

// Context is handed to a property deserializer. It identifies the object under
// construction, the schema of that object and the root context shared by the
// whole top-level call. The target may be only partially populated.
type Context struct {
	root   *RootContext
	parent *Context
	schema *ModelSchema
	target any
	json   map[string]any
	path   string
}

// NewContext builds a context for invoking a property deserializer directly,
// outside a top-level deserialize call (for example in tests of custom
// property kinds).
func NewContext(root *RootContext, s *ModelSchema, target any) *Context {
	return &Context{root: root, schema: s, target: target}
}

// Root returns the root context of the current top-level call.
func (dc *Context) Root() *RootContext { return dc.root }

// Parent returns the context of the enclosing object (nil at top level).
func (dc *Context) Parent() *Context { return dc.parent }

// ModelSchema returns the schema of Target.
func (dc *Context) ModelSchema() *ModelSchema { return dc.schema }

// Target returns the object under construction.
func (dc *Context) Target() any { return dc.target }

// JSON returns the JSON object the target is read from.
func (dc *Context) JSON() map[string]any { return dc.json }

// Path returns the JSON Pointer of the value being deserialized.
func (dc *Context) Path() string { return pointerOrRoot(dc.path) }

// Args returns user arguments passed with WithUserArgs.
func (dc *Context) Args() any { return dc.root.Args() }

// Await is RootContext.Await for property deserializers: the request counts
// towards unresolved-reference detection and is reported at Path when it is
// never satisfied.
func (dc *Context) Await(s *ModelSchema, id any, cb func(target any)) {
	dc.root.await(s, id, dc.Path(), true, cb)
}

// DeserializeChild deserializes jsonValue as a nested object of schema s.
// done receives the new target as soon as its properties are launched;
// properties waiting on references are filled in before the call settles.
func (dc *Context) DeserializeChild(ctx context.Context, s *ModelSchema, jsonValue any, done Done) {
	deserializeObject(ctx, dc.root, dc, s, jsonValue, dc.path, nil, done)
}

// Each runs fn for every key (used as the path segment of the item) and calls
// done with the item values in key order once all of them completed. Item
// failures are reported at the item path; done then still receives the values
// collected so far. done must be (or eventually call) the Done handed to the
// calling deserializer.
func (dc *Context) Each(ctx context.Context, keys []string, fn func(i int, item *Context, done Done), done Done) {
	if len(keys) == 0 {
		done([]any{}, nil)
		return
	}
	rc := dc.root
	values := make([]any, len(keys))
	var (
		mu      sync.Mutex
		pending = len(keys) + 1
	)
	rc.joinAdd()
	finish := func() {
		mu.Lock()
		pending--
		last := pending == 0
		mu.Unlock()
		if last {
			rc.joinDone()
			done(values, nil)
		}
	}
	// keeps the call from settling while items are still being launched
	hold := rc.track(dc.path, nil, nil)
	for i, k := range keys {
		item := dc.at(k)
		itemDone := rc.track(item.path, func(v any) {
			mu.Lock()
			values[i] = v
			mu.Unlock()
		}, finish)
		fn(i, item, itemDone)
	}
	finish()
	hold(nil, nil)
}

// IndexKeys returns "0".."n-1" for use with Each.
func IndexKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}
	return keys
}

func (dc *Context) at(segment string) *Context {
	cp := *dc
	cp.path = dc.path + "/" + escapePointerToken(segment)
	return &cp
}
