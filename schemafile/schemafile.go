// Package schemafile declares serializr model schemas in YAML (or JSON)
// documents, so that tools can deserialize data without Go model code.
//
//	root: Store
//	models:
//	  User:
//	    props:
//	      id: identifier
//	      name: primitive
//	  Todo:
//	    unknown: strict
//	    props:
//	      id: identifier
//	      owner: {ref: User}
//	      due: {optional: date}
//	      label: {alias: display_name, of: primitive}
//	  Store:
//	    props:
//	      users: {list: {object: User}}
//	      todos: {list: {object: Todo}}
//
// Property kinds: identifier, primitive, date, raw, {ref: M}, {object: M},
// {list: P}, {map: P}, {optional: P}, {alias: name, of: P}.
package schemafile

import (
	"errors"
	"fmt"
	"sort"

	serializr "github.com/reoring/serializr"
	"github.com/reoring/serializr/dsl"
	"gopkg.in/yaml.v3"
)

// Document is the decoded form of a schema file.
type Document struct {
	Root   string               `yaml:"root"`
	Models map[string]ModelSpec `yaml:"models"`
}

// ModelSpec declares one model.
type ModelSpec struct {
	Extends string              `yaml:"extends"`
	Unknown string              `yaml:"unknown"` // strip (default), strict, passthrough
	Props   map[string]PropSpec `yaml:"props"`
}

// PropSpec declares one property; see the package documentation for the
// accepted shapes.
type PropSpec struct {
	Kind  string // identifier, primitive, date, raw, ref, object, list, map, optional, alias
	Model string // ref/object target
	Alias string // alias JSON name
	Elem  *PropSpec
}

// UnmarshalYAML accepts either a scalar kind or a single-kind mapping.
func (p *PropSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		p.Kind = node.Value
		return nil
	case yaml.MappingNode:
		var raw map[string]yaml.Node
		if err := node.Decode(&raw); err != nil {
			return err
		}
		if n, ok := raw["alias"]; ok {
			of, ok := raw["of"]
			if !ok {
				return fmt.Errorf("schemafile: line %d: alias requires 'of'", node.Line)
			}
			p.Kind = "alias"
			p.Alias = n.Value
			p.Elem = &PropSpec{}
			return of.Decode(p.Elem)
		}
		if len(raw) != 1 {
			return fmt.Errorf("schemafile: line %d: property must declare exactly one kind", node.Line)
		}
		for k, v := range raw {
			p.Kind = k
			switch k {
			case "ref", "object":
				p.Model = v.Value
			case "list", "map", "optional":
				p.Elem = &PropSpec{}
				if err := v.Decode(p.Elem); err != nil {
					return err
				}
			default:
				return fmt.Errorf("schemafile: line %d: unknown property kind %q", node.Line, k)
			}
		}
		return nil
	}
	return fmt.Errorf("schemafile: line %d: unsupported property declaration", node.Line)
}

// Set is a loaded collection of models.
type Set struct {
	Root   string
	Models map[string]*serializr.ModelSchema
}

// Model returns the named model.
func (s *Set) Model(name string) (*serializr.ModelSchema, bool) {
	m, ok := s.Models[name]
	return m, ok
}

// RootModel returns the model named by the document root.
func (s *Set) RootModel() (*serializr.ModelSchema, error) {
	if s.Root == "" {
		return nil, errors.New("schemafile: document declares no root model")
	}
	m, ok := s.Models[s.Root]
	if !ok {
		return nil, fmt.Errorf("schemafile: root model %q is not declared", s.Root)
	}
	return m, nil
}

// Load parses a schema document and builds every model it declares.
func Load(data []byte) (*Set, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	return Build(doc)
}

// Build turns a decoded document into model schemas. Models may reference each
// other in any order.
func Build(doc Document) (*Set, error) {
	if len(doc.Models) == 0 {
		return nil, errors.New("schemafile: no models declared")
	}
	set := &Set{Root: doc.Root, Models: make(map[string]*serializr.ModelSchema, len(doc.Models))}
	names := make([]string, 0, len(doc.Models))
	for name := range doc.Models {
		names = append(names, name)
		set.Models[name] = serializr.NewModel(name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := doc.Models[name]
		m := set.Models[name]
		if spec.Extends != "" {
			parent, ok := set.Models[spec.Extends]
			if !ok {
				return nil, fmt.Errorf("schemafile: %s extends unknown model %q", name, spec.Extends)
			}
			m.Extends(parent)
		}
		switch spec.Unknown {
		case "", "strip":
			m.UnknownStrip()
		case "strict":
			m.UnknownStrict()
		case "passthrough":
			m.UnknownPassthrough()
		default:
			return nil, fmt.Errorf("schemafile: %s: unknown policy %q", name, spec.Unknown)
		}
		propNames := make([]string, 0, len(spec.Props))
		for pn := range spec.Props {
			propNames = append(propNames, pn)
		}
		sort.Strings(propNames)
		for _, pn := range propNames {
			ps, err := set.prop(spec.Props[pn])
			if err != nil {
				return nil, fmt.Errorf("schemafile: %s.%s: %w", name, pn, err)
			}
			m.Prop(pn, ps)
		}
	}
	for _, name := range names {
		if _, err := set.Models[name].Build(); err != nil {
			return nil, fmt.Errorf("schemafile: %w", err)
		}
	}
	return set, nil
}

func (s *Set) prop(spec PropSpec) (serializr.PropSchema, error) {
	switch spec.Kind {
	case "identifier":
		return serializr.NewIdentifier()
	case "primitive", "":
		return serializr.DefaultPrimitive, nil
	case "date":
		return dsl.Date(), nil
	case "raw":
		return dsl.Raw(), nil
	case "ref", "object":
		m, ok := s.Models[spec.Model]
		if !ok {
			return serializr.PropSchema{}, fmt.Errorf("unknown model %q", spec.Model)
		}
		if spec.Kind == "ref" {
			return dsl.NewReference(m)
		}
		return dsl.Object(m), nil
	case "list", "map", "optional", "alias":
		if spec.Elem == nil {
			return serializr.PropSchema{}, fmt.Errorf("%s requires an element declaration", spec.Kind)
		}
		elem, err := s.prop(*spec.Elem)
		if err != nil {
			return serializr.PropSchema{}, err
		}
		switch spec.Kind {
		case "list":
			return dsl.List(elem), nil
		case "map":
			return dsl.Map(elem), nil
		case "optional":
			return dsl.Optional(elem), nil
		default:
			if spec.Alias == "" {
				return serializr.PropSchema{}, errors.New("alias requires a JSON name")
			}
			return dsl.Alias(spec.Alias, elem), nil
		}
	}
	return serializr.PropSchema{}, fmt.Errorf("unknown property kind %q", spec.Kind)
}
