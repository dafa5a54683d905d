package serializr

import (
	"fmt"
	"sort"
)

// UnknownPolicy controls how JSON keys without a declared property are handled.
type UnknownPolicy int

const (
	UnknownStrip       UnknownPolicy = iota // Ignore unknown keys (default).
	UnknownStrict                           // Report unknown keys as issues.
	UnknownPassthrough                      // Copy unknown primitive values onto the target.
)

// FactoryFunc creates the target instance for a JSON object.
type FactoryFunc func(dc *Context) (any, error)

type propEntry struct {
	name string
	ps   PropSchema
}

// ModelSchema declares how every property of a model type is transported.
// Declare it once (builder methods mutate it) and share it afterwards; it must
// not be modified once deserialization starts.
type ModelSchema struct {
	name    string
	props   []propEntry
	index   map[string]int
	parent  *ModelSchema
	factory FactoryFunc
	unknown UnknownPolicy
	err     error
}

// NewModel creates an empty model schema whose targets are map[string]any.
func NewModel(name string) *ModelSchema {
	return &ModelSchema{name: name, index: map[string]int{}}
}

// SimpleModel declares an anonymous model from a property map. Properties are
// ordered by name.
func SimpleModel(props map[string]PropSchema) *ModelSchema {
	names := make([]string, 0, len(props))
	for n := range props {
		names = append(names, n)
	}
	sort.Strings(names)
	s := NewModel("")
	for _, n := range names {
		s.Prop(n, props[n])
	}
	return s
}

// Name returns the model name ("<anonymous>" when empty).
func (s *ModelSchema) Name() string {
	if s == nil {
		return "<nil>"
	}
	if s.name == "" {
		return "<anonymous>"
	}
	return s.name
}

// Prop declares (or replaces) a property.
func (s *ModelSchema) Prop(name string, ps PropSchema) *ModelSchema {
	if s.err != nil {
		return s
	}
	if err := Invariant(ps.Valid(), fmt.Sprintf("property %q of %s: expected a property schema", name, s.Name())); err != nil {
		s.err = err
		return s
	}
	if i, ok := s.index[name]; ok {
		s.props[i].ps = ps
		return s
	}
	s.index[name] = len(s.props)
	s.props = append(s.props, propEntry{name: name, ps: ps})
	return s
}

// Extends makes s a subtype of parent: parent properties are inherited and a
// registration under s satisfies references to parent.
func (s *ModelSchema) Extends(parent *ModelSchema) *ModelSchema {
	s.parent = parent
	return s
}

// Parent returns the schema s extends, if any.
func (s *ModelSchema) Parent() *ModelSchema { return s.parent }

// Factory overrides target creation.
func (s *ModelSchema) Factory(fn FactoryFunc) *ModelSchema {
	s.factory = fn
	return s
}

// UnknownStrip ignores unknown keys.
func (s *ModelSchema) UnknownStrip() *ModelSchema {
	s.unknown = UnknownStrip
	return s
}

// UnknownStrict reports unknown keys as issues.
func (s *ModelSchema) UnknownStrict() *ModelSchema {
	s.unknown = UnknownStrict
	return s
}

// UnknownPassthrough copies unknown primitive values onto the target.
func (s *ModelSchema) UnknownPassthrough() *ModelSchema {
	s.unknown = UnknownPassthrough
	return s
}

// Build validates the declaration: property schemas must be well formed and
// at most one identifier may exist across the inheritance chain.
func (s *ModelSchema) Build() (*ModelSchema, error) {
	if s.err != nil {
		return nil, s.err
	}
	seen := map[*ModelSchema]bool{}
	for m := s; m != nil; m = m.parent {
		if err := Invariant(!seen[m], fmt.Sprintf("%s: cyclic inheritance", s.Name())); err != nil {
			return nil, err
		}
		seen[m] = true
		if m.err != nil {
			return nil, m.err
		}
	}
	// a subtype redeclaring an inherited property replaces it
	ids := 0
	for _, p := range s.allProps() {
		if p.ps.IsIdentifier() {
			ids++
		}
	}
	if err := Invariant(ids <= 1, fmt.Sprintf("%s: a model can declare at most one identifier property", s.Name())); err != nil {
		return nil, err
	}
	return s, nil
}

// MustBuild is Build that panics on error.
func (s *ModelSchema) MustBuild() *ModelSchema {
	out, err := s.Build()
	if err != nil {
		panic(err)
	}
	return out
}

// IsAssignableTo reports whether s is other or extends it. It terminates on
// cyclic chains that Build would reject.
func (s *ModelSchema) IsAssignableTo(other *ModelSchema) bool {
	// slow advances every second step; meeting fast means a cycle
	slow := s
	for m, i := s, 0; m != nil; m, i = m.parent, i+1 {
		if m == other {
			return true
		}
		if i%2 == 1 {
			slow = slow.parent
			if slow == m.parent {
				return false
			}
		}
	}
	return false
}

// IdentifierProp returns the name of the identifier property among the
// effective properties (inherited ones included).
func (s *ModelSchema) IdentifierProp() (string, bool) {
	for _, p := range s.allProps() {
		if p.ps.IsIdentifier() {
			return p.name, true
		}
	}
	return "", false
}

// Identify reads the identifier value of target.
func (s *ModelSchema) Identify(target any) (any, bool) {
	name, ok := s.IdentifierProp()
	if !ok || target == nil {
		return nil, false
	}
	return GetProp(target, name)
}

// PropNames lists the declared property names, parents first.
func (s *ModelSchema) PropNames() []string {
	var out []string
	for _, p := range s.allProps() {
		out = append(out, p.name)
	}
	return out
}

// allProps returns the effective properties, parents first; a subtype
// redeclaring a name replaces the inherited schema in place.
func (s *ModelSchema) allProps() []propEntry {
	var chain []*ModelSchema
	for m := s; m != nil; m = m.parent {
		chain = append(chain, m)
	}
	var out []propEntry
	pos := map[string]int{}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, p := range chain[i].props {
			if j, ok := pos[p.name]; ok {
				out[j] = p
				continue
			}
			pos[p.name] = len(out)
			out = append(out, p)
		}
	}
	return out
}

func (s *ModelSchema) newTarget(dc *Context) (any, error) {
	for m := s; m != nil; m = m.parent {
		if m.factory != nil {
			return m.factory(dc)
		}
	}
	return map[string]any{}, nil
}

func jsonKey(p propEntry) string {
	if n := p.ps.JSONName(); n != "" {
		return n
	}
	return p.name
}
