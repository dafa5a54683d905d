package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"
	serializr "github.com/reoring/serializr"
	"github.com/reoring/serializr/middleware"
)

// DeserializeJSON deserializes the request body with schema s, stores the
// result in the request context, and on failure aborts with 400 and the
// issues payload.
func DeserializeJSON(s *serializr.ModelSchema, opts ...serializr.DeserializeOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := middleware.DeserializeRequest(c.Request, s, opts...)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorBody(err))
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithDeserialized(c.Request.Context(), v))
		c.Next()
	}
}

// GetDeserialized fetches the deserialized body from gin.Context.
func GetDeserialized[T any](c *gin.Context) (T, bool) {
	return middleware.DeserializedFromContext[T](c.Request.Context())
}
