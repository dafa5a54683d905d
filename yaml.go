package serializr

import (
	"context"

	"gopkg.in/yaml.v3"
)

// DeserializeYAML decodes a YAML document into JSON-shaped values and
// deserializes it with schema s.
func DeserializeYAML(ctx context.Context, s *ModelSchema, data []byte, opts ...DeserializeOption) (any, error) {
	v, err := DecodeYAML(data)
	if err != nil {
		return nil, err
	}
	return Deserialize(ctx, s, v, opts...)
}

// DecodeYAML decodes a YAML document into map[string]any/[]any/scalars.
// Mapping keys that are not strings are dropped.
func DecodeYAML(data []byte) (any, error) {
	var node any
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	return yamlNormalizeValue(node), nil
}

func yamlNormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = yamlNormalizeValue(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = yamlNormalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}
