package serializr

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// PropGetter lets a target expose properties without reflection.
type PropGetter interface {
	GetProp(name string) (any, bool)
}

// PropSetter lets a target receive properties without reflection.
type PropSetter interface {
	SetProp(name string, v any) error
}

// ResolveStructKey applies the rule used to map a struct field to a property
// name. Priority: serializr:"name=..." > json tag name > field name; "-"
// disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if gt := sf.Tag.Get("serializr"); gt != "" {
		for _, p := range strings.Split(gt, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 && jt[:i] != "" {
			return jt[:i]
		}
		if !strings.Contains(jt, ",") {
			return jt
		}
	}
	return sf.Name
}

var fieldCache sync.Map // reflect.Type -> map[string][]int

func structFields(t reflect.Type) map[string][]int {
	if v, ok := fieldCache.Load(t); ok {
		return v.(map[string][]int)
	}
	out := map[string][]int{}
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		key := ResolveStructKey(f)
		if key == "-" {
			continue
		}
		if _, dup := out[key]; !dup {
			out[key] = f.Index
		}
	}
	fieldCache.Store(t, out)
	return out
}

// GetProp reads property name from target (map[string]any, PropGetter or
// struct pointer).
func GetProp(target any, name string) (any, bool) {
	switch t := target.(type) {
	case map[string]any:
		v, ok := t[name]
		return v, ok
	case PropGetter:
		return t.GetProp(name)
	}
	rv := reflect.ValueOf(target)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	idx, ok := structFields(rv.Type())[name]
	if !ok {
		return nil, false
	}
	f, err := rv.FieldByIndexErr(idx)
	if err != nil {
		return nil, false
	}
	return f.Interface(), true
}

// SetProp writes property name on target (map[string]any, PropSetter or
// struct pointer). Struct fields receive converted values: json.Number to
// numeric kinds, []any to typed slices, map[string]any to typed maps.
func SetProp(target any, name string, v any) error {
	switch t := target.(type) {
	case map[string]any:
		t[name] = v
		return nil
	case PropSetter:
		return t.SetProp(name, v)
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("serializr: cannot set %q on %T", name, target)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("serializr: cannot set %q on %T", name, target)
	}
	idx, ok := structFields(rv.Type())[name]
	if !ok {
		return fmt.Errorf("serializr: %T has no property %q", target, name)
	}
	f, err := rv.FieldByIndexErr(idx)
	if err != nil {
		return fmt.Errorf("serializr: %T.%s: %w", target, name, err)
	}
	if err := assign(f, v); err != nil {
		return fmt.Errorf("serializr: %T.%s: %w", target, name, err)
	}
	return nil
}

func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	src := reflect.ValueOf(v)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}
	if n, ok := v.(json.Number); ok {
		return assignNumber(dst, n)
	}
	switch dst.Kind() {
	case reflect.Slice:
		items, ok := v.([]any)
		if !ok {
			break
		}
		out := reflect.MakeSlice(dst.Type(), len(items), len(items))
		for i, it := range items {
			if err := assign(out.Index(i), it); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		dst.Set(out)
		return nil
	case reflect.Map:
		m, ok := v.(map[string]any)
		if !ok || dst.Type().Key().Kind() != reflect.String {
			break
		}
		out := reflect.MakeMapWithSize(dst.Type(), len(m))
		for k, it := range m {
			ev := reflect.New(dst.Type().Elem()).Elem()
			if err := assign(ev, it); err != nil {
				return fmt.Errorf("[%s]: %w", k, err)
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(dst.Type().Key()), ev)
		}
		dst.Set(out)
		return nil
	case reflect.Interface:
		if src.Type().Implements(dst.Type()) {
			dst.Set(src)
			return nil
		}
	}
	if src.Type().ConvertibleTo(dst.Type()) && src.Kind() != reflect.Slice && src.Kind() != reflect.Map {
		dst.Set(src.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
}

func assignNumber(dst reflect.Value, n json.Number) error {
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := n.Int64()
		if err != nil {
			return err
		}
		if dst.OverflowInt(i) {
			return fmt.Errorf("%s overflows %s", n, dst.Type())
		}
		dst.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := n.Int64()
		if err != nil {
			return err
		}
		if i < 0 || dst.OverflowUint(uint64(i)) {
			return fmt.Errorf("%s overflows %s", n, dst.Type())
		}
		dst.SetUint(uint64(i))
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := n.Float64()
		if err != nil {
			return err
		}
		dst.SetFloat(f)
		return nil
	case reflect.String:
		dst.SetString(string(n))
		return nil
	}
	return fmt.Errorf("cannot assign number %s to %s", n, dst.Type())
}
