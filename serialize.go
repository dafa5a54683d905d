package serializr

import (
	"context"
	"reflect"
	"sort"
	"strconv"
)

// Serialize converts target (an object of schema s, or a slice of them) into
// its JSON-compatible form: map[string]any per object, []any for slices.
func Serialize(ctx context.Context, s *ModelSchema, target any) (any, error) {
	if s == nil {
		return nil, Issues{{Path: "/", Code: CodeInvariantViolation, Message: "nil model schema"}}
	}
	if _, err := s.Build(); err != nil {
		return nil, IssuesAt(err, "")
	}
	return serializeValue(ctx, s, target, "")
}

func serializeValue(ctx context.Context, s *ModelSchema, target any, path string) (any, error) {
	if target == nil {
		return nil, nil
	}
	if _, isMap := target.(map[string]any); !isMap {
		rv := reflect.ValueOf(target)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			out := make([]any, rv.Len())
			var iss Issues
			for i := 0; i < rv.Len(); i++ {
				v, err := serializeValue(ctx, s, rv.Index(i).Interface(), path+"/"+strconv.Itoa(i))
				if err != nil {
					iss = append(iss, IssuesAt(err, "")...)
					continue
				}
				out[i] = v
			}
			if len(iss) > 0 {
				return out, iss
			}
			return out, nil
		}
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, nil
		}
	}
	return serializeObject(ctx, s, target, path)
}

// SerializeObject serializes one object of schema s; path prefixes issue paths.
// Property kinds embedding nested models call it.
func SerializeObject(ctx context.Context, s *ModelSchema, target any, path string) (map[string]any, error) {
	if target == nil {
		return nil, nil
	}
	return serializeObject(ctx, s, target, path)
}

func serializeObject(ctx context.Context, s *ModelSchema, target any, path string) (map[string]any, error) {
	props := s.allProps()
	out := make(map[string]any, len(props))
	var iss Issues
	known := make(map[string]struct{}, len(props))
	for _, p := range props {
		known[p.name] = struct{}{}
		v, _ := GetProp(target, p.name)
		key := jsonKey(p)
		jv, err := p.ps.Serialize(ctx, v, target)
		if err != nil {
			iss = append(iss, IssuesAt(err, path+"/"+escapePointerToken(key))...)
			continue
		}
		if jv == Skip {
			continue
		}
		out[key] = jv
	}
	if m, ok := target.(map[string]any); ok && s.unknown == UnknownPassthrough {
		extra := make([]string, 0, len(m))
		for k := range m {
			if _, ok := known[k]; !ok {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		for _, k := range extra {
			if v := m[k]; IsPrimitive(v) {
				out[k] = v
			}
		}
	}
	if len(iss) > 0 {
		return out, iss
	}
	return out, nil
}
