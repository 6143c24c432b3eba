package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	// CtxRequestIDKey is where the request id lives in the Gin context.
	CtxRequestIDKey = "request_id"
)

// RequestIDMiddleware injects a request_id into the Gin context and echoes it in the response.
// A well-formed incoming X-Request-ID is kept so traces can span services.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		c.Set(CtxRequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
