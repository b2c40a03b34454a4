package response

import (
	"github.com/edupulse/class-service/internal/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is echoed on every response and forwarded to the identity service.
const HeaderRequestID = "X-Request-ID"

const contextKeyRequestID = "request_id"

// RequestIDMiddleware reuses an inbound X-Request-ID or mints one, and carries it
// into the request context so identity lookups are tagged with it.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.New().String()
		}
		c.Set(contextKeyRequestID, reqID)
		c.Header(HeaderRequestID, reqID)
		c.Request = c.Request.WithContext(identity.WithRequestID(c.Request.Context(), reqID))
		c.Next()
	}
}

// RequestID returns the id assigned by RequestIDMiddleware, or "".
func RequestID(c *gin.Context) string {
	return c.GetString(contextKeyRequestID)
}
