package serializr

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/reoring/serializr/i18n"
)

// DuplicateIdentifierError reports a second, different target registered
// under an already resolved (model, id) pair.
type DuplicateIdentifierError struct {
	Model string
	ID    any
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("serializr: duplicate identifier %s#%v", e.Model, e.ID)
}

// Is makes errors.Is(err, ErrDuplicateIdentifier) hold.
func (e *DuplicateIdentifierError) Is(target error) bool { return target == ErrDuplicateIdentifier }

// PendingRef describes an await request that has not been satisfied yet.
type PendingRef struct {
	Model string
	ID    any
	Path  string // JSON Pointer of the awaiting property ("" when unknown).
}

type registration struct {
	schema *ModelSchema
	target any
}

type pendingRef struct {
	schema  *ModelSchema
	id      any
	path    string
	counted bool
	cb      func(target any)
}

// RootContext is the state shared by every object reached from one top-level
// deserialize call: the identifier resolution registry plus completion
// tracking for the call. It must not be reused across calls.
//
// Resolve and Await may be called in any order and from any goroutine.
// Callbacks run outside the internal lock, so they may re-enter the context.
// Schemas are expected to be built (see ModelSchema.Build); inheritance
// matching still terminates on cyclic chains.
type RootContext struct {
	mu       sync.Mutex
	resolved map[any][]registration
	waiting  map[any][]*pendingRef

	// completion tracking
	callbacks int // outstanding tracked Done callbacks
	refs      int // outstanding counted awaits
	joins     int // outstanding Each fan-ins
	started   bool
	settled   bool
	failFast  bool
	issues    Issues
	result    any
	ready     chan struct{}

	writeMu sync.Mutex
	args    any
}

// NewRootContext returns an empty registry for one top-level deserialize call.
func NewRootContext() *RootContext {
	return &RootContext{
		resolved: map[any][]registration{},
		waiting:  map[any][]*pendingRef{},
		ready:    make(chan struct{}),
	}
}

// Args returns the user arguments supplied with WithUserArgs.
func (rc *RootContext) Args() any { return rc.args }

// Resolve registers target as the instance identified by (s, id) and then
// notifies matching await requests in the order they were issued.
// Registering the same instance twice is a no-op; a different instance fails
// with a *DuplicateIdentifierError.
func (rc *RootContext) Resolve(s *ModelSchema, id any, target any) error {
	if err := Invariant(s != nil, "resolve requires a model schema"); err != nil {
		return err
	}
	key := idKey(id)

	rc.mu.Lock()
	for _, r := range rc.resolved[key] {
		if r.schema != s {
			continue
		}
		rc.mu.Unlock()
		if sameInstance(r.target, target) {
			return nil
		}
		return &DuplicateIdentifierError{Model: s.Name(), ID: id}
	}
	rc.resolved[key] = append(rc.resolved[key], registration{schema: s, target: target})

	var fire []*pendingRef
	if q := rc.waiting[key]; len(q) > 0 {
		keep := make([]*pendingRef, 0, len(q))
		for _, p := range q {
			if s.IsAssignableTo(p.schema) {
				fire = append(fire, p)
				if p.counted {
					rc.refs--
				}
			} else {
				keep = append(keep, p)
			}
		}
		if len(keep) == 0 {
			delete(rc.waiting, key)
		} else {
			rc.waiting[key] = keep
		}
	}
	rc.mu.Unlock()

	for _, p := range fire {
		p.cb(target)
	}
	return nil
}

// Await invokes cb with the target registered for (s, id), immediately when
// it is already known, otherwise exactly once when a matching Resolve happens.
// A registration under a schema extending s also matches.
//
// Requests issued through Await do not participate in unresolved-reference
// detection; property deserializers should use Context.Await instead.
func (rc *RootContext) Await(s *ModelSchema, id any, cb func(target any)) {
	rc.await(s, id, "", false, cb)
}

// Lookup returns the target registered for (s, id) if any.
func (rc *RootContext) Lookup(s *ModelSchema, id any) (any, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.lookupLocked(s, idKey(id))
}

// Wait blocks until (s, id) is resolved or ctx is done. A cancelled wait
// withdraws its request.
func (rc *RootContext) Wait(ctx context.Context, s *ModelSchema, id any) (any, error) {
	ch := make(chan any, 1)
	p := rc.await(s, id, "", false, func(target any) { ch <- target })
	select {
	case t := <-ch:
		return t, nil
	case <-ctx.Done():
		if p != nil {
			rc.withdraw(p)
		}
		// a Resolve may have won the race
		select {
		case t := <-ch:
			return t, nil
		default:
		}
		return nil, ctx.Err()
	}
}

// Unresolved returns a snapshot of every await request still waiting,
// including uncounted ones issued through Await and Wait, ordered by path.
func (rc *RootContext) Unresolved() []PendingRef {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.unresolvedLocked(false)
}

// unresolvedLocked lists pending requests; countedOnly restricts the list to
// requests made by property deserializers.
func (rc *RootContext) unresolvedLocked(countedOnly bool) []PendingRef {
	var out []PendingRef
	for _, q := range rc.waiting {
		for _, p := range q {
			if countedOnly && !p.counted {
				continue
			}
			out = append(out, PendingRef{Model: p.schema.Name(), ID: p.id, Path: p.path})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (rc *RootContext) lookupLocked(s *ModelSchema, key any) (any, bool) {
	for _, r := range rc.resolved[key] {
		if r.schema.IsAssignableTo(s) {
			return r.target, true
		}
	}
	return nil, false
}

// await queues cb for (s, id) and returns the queued request, or nil when the
// target was already known and cb ran immediately.
func (rc *RootContext) await(s *ModelSchema, id any, path string, counted bool, cb func(target any)) *pendingRef {
	key := idKey(id)
	rc.mu.Lock()
	if t, ok := rc.lookupLocked(s, key); ok {
		rc.mu.Unlock()
		cb(t)
		return nil
	}
	p := &pendingRef{schema: s, id: id, path: path, counted: counted, cb: cb}
	rc.waiting[key] = append(rc.waiting[key], p)
	if counted {
		rc.refs++
	}
	fin := rc.checkSettledLocked()
	rc.mu.Unlock()
	fin()
	return p
}

// withdraw removes p from the waiting list if it has not fired yet.
func (rc *RootContext) withdraw(p *pendingRef) {
	key := idKey(p.id)
	rc.mu.Lock()
	q := rc.waiting[key]
	for i, w := range q {
		if w != p {
			continue
		}
		q = append(q[:i:i], q[i+1:]...)
		if len(q) == 0 {
			delete(rc.waiting, key)
		} else {
			rc.waiting[key] = q
		}
		if p.counted {
			rc.refs--
		}
		break
	}
	fin := rc.checkSettledLocked()
	rc.mu.Unlock()
	fin()
}

// ---- completion tracking ----

// begin marks the context as owned by a deserialize call.
func (rc *RootContext) begin(failFast bool, args any) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if err := Invariant(!rc.started, "root context is already bound to a deserialize call"); err != nil {
		return err
	}
	rc.started = true
	rc.failFast = failFast
	rc.args = args
	return nil
}

// track returns a once-only Done for the step at path. Errors are recorded as
// issues rooted at path; values go to onValue unless the call already settled.
// then runs after either outcome.
func (rc *RootContext) track(path string, onValue func(v any), then func()) Done {
	rc.mu.Lock()
	rc.callbacks++
	rc.mu.Unlock()
	var once sync.Once
	return func(v any, err error) {
		once.Do(func() {
			if err != nil {
				rc.fail(IssuesAt(err, path))
			} else if onValue != nil {
				onValue(v)
			}
			if then != nil {
				then()
			}
			rc.mu.Lock()
			rc.callbacks--
			fin := rc.checkSettledLocked()
			rc.mu.Unlock()
			fin()
		})
	}
}

// write applies a mutation of a target unless the call already settled.
// Mutations from concurrently completing deserializers are serialized.
func (rc *RootContext) write(fn func()) {
	rc.writeMu.Lock()
	defer rc.writeMu.Unlock()
	rc.mu.Lock()
	settled := rc.settled
	rc.mu.Unlock()
	if !settled {
		fn()
	}
}

func (rc *RootContext) fail(iss Issues) {
	if len(iss) == 0 {
		return
	}
	rc.mu.Lock()
	if rc.settled {
		rc.mu.Unlock()
		return
	}
	rc.issues = append(rc.issues, iss...)
	fin := func() {}
	if rc.failFast {
		fin = rc.settleLocked()
	}
	rc.mu.Unlock()
	fin()
}

func (rc *RootContext) joinAdd() {
	rc.mu.Lock()
	rc.joins++
	rc.mu.Unlock()
}

func (rc *RootContext) joinDone() {
	rc.mu.Lock()
	rc.joins--
	fin := rc.checkSettledLocked()
	rc.mu.Unlock()
	fin()
}

// checkSettledLocked settles the call once every outstanding callback is
// blocked on a reference or on a fan-in of such callbacks. The returned func
// must be invoked after unlocking.
func (rc *RootContext) checkSettledLocked() func() {
	if !rc.started || rc.settled || rc.callbacks != rc.refs+rc.joins {
		return func() {}
	}
	return rc.settleLocked()
}

func (rc *RootContext) settleLocked() func() {
	if rc.settled {
		return func() {}
	}
	rc.settled = true
	if !rc.failFast || len(rc.issues) == 0 {
		for _, p := range rc.unresolvedLocked(true) {
			rc.issues = append(rc.issues, Issue{
				Path:    pointerOrRoot(p.Path),
				Code:    CodeUnresolvedReference,
				Message: i18n.T(CodeUnresolvedReference, map[string]string{"model": p.Model, "id": fmt.Sprint(p.ID)}),
				Params:  map[string]any{"model": p.Model, "id": p.ID},
			})
		}
	}
	sort.SliceStable(rc.issues, func(i, j int) bool { return rc.issues[i].Path < rc.issues[j].Path })
	ch := rc.ready
	return func() { close(ch) }
}

func (rc *RootContext) outcome() (any, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if len(rc.issues) > 0 {
		return rc.result, append(Issues(nil), rc.issues...)
	}
	return rc.result, nil
}
