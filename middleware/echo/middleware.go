package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	serializr "github.com/reoring/serializr"
	"github.com/reoring/serializr/middleware"
)

// DeserializeJSON deserializes the request body with schema s, stores the
// result in the request context, or returns 400 with the issues payload.
func DeserializeJSON(s *serializr.ModelSchema, opts ...serializr.DeserializeOption) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v, err := middleware.DeserializeRequest(c.Request(), s, opts...)
			if err != nil {
				return c.JSON(http.StatusBadRequest, middleware.ErrorBody(err))
			}
			ctx := middleware.ContextWithDeserialized(c.Request().Context(), v)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetDeserialized fetches the deserialized body from echo.Context.
func GetDeserialized[T any](c echo.Context) (T, bool) {
	return middleware.DeserializedFromContext[T](c.Request().Context())
}
