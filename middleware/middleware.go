// Package middleware holds the framework-neutral pieces shared by the HTTP
// adapters: request-body deserialization, context storage of the result and
// the issue payload written on failure. Framework adapters live in the
// nested gin and echo modules.
package middleware

import (
	"context"
	"net/http"

	j "github.com/goccy/go-json"

	serializr "github.com/reoring/serializr"
)

// ctxKeyDeserialized is a typed context key for the deserialized body.
type ctxKeyDeserialized struct{}

// ContextWithDeserialized attaches a deserialized request body to the context.
func ContextWithDeserialized(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, ctxKeyDeserialized{}, v)
}

// DeserializedFromContext retrieves the deserialized body as T.
func DeserializedFromContext[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(ctxKeyDeserialized{}).(T)
	return v, ok
}

// DefaultOptions returns the deserialize options used when an adapter is
// given none: every issue of the body is reported.
func DefaultOptions() []serializr.DeserializeOption {
	return []serializr.DeserializeOption{serializr.WithFailFast(false)}
}

// DeserializeRequest deserializes the JSON body of r with schema s. The
// request is passed as user args so property kinds can read headers or the
// authenticated principal through Context.Args.
func DeserializeRequest(r *http.Request, s *serializr.ModelSchema, opts ...serializr.DeserializeOption) (any, error) {
	if len(opts) == 0 {
		opts = DefaultOptions()
	}
	opts = append([]serializr.DeserializeOption{serializr.WithUserArgs(r)}, opts...)
	return serializr.DeserializeReader(r.Context(), s, r.Body, opts...)
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []serializr.Issue) map[string]any {
	out := make([]map[string]any, 0, len(issues))
	for _, it := range issues {
		m := map[string]any{"path": it.Path, "code": it.Code, "message": it.Message}
		if len(it.Params) > 0 {
			m["params"] = it.Params
		}
		out = append(out, m)
	}
	return map[string]any{"issues": out}
}

// ErrorBody converts a deserialize error into a response payload.
func ErrorBody(err error) map[string]any {
	if iss, ok := serializr.AsIssues(err); ok {
		return ErrorPayload(iss)
	}
	return map[string]any{"error": err.Error()}
}

// Handler wraps next for plain net/http servers: the body is deserialized
// with s and stored in the request context, or a 400 with the issues is
// written.
func Handler(s *serializr.ModelSchema, next http.Handler, opts ...serializr.DeserializeOption) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := DeserializeRequest(r, s, opts...)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = j.NewEncoder(w).Encode(ErrorBody(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithDeserialized(r.Context(), v)))
	})
}
