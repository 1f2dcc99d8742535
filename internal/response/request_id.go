package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key holding the request id that
// buildMetadata echoes into every response envelope.
const ContextKeyRequestID = "request_id"

// RequestIDMiddleware tags every request with an id. A client-supplied
// X-Request-ID is honored, so the exam client's retries stay correlated
// across the attempt, submit, and monitor surfaces; otherwise one is
// generated.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}
