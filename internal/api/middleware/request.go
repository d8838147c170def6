package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/giteebridge/pkg/idgen"
)

const headerRequestID = "X-Request-ID"

// requestIDPattern limits caller supplied IDs to what is safe to echo in
// headers and logs
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID tags the request with the caller's X-Request-ID when it is
// well-formed, or a fresh one, and echoes it in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if !requestIDPattern.MatchString(id) {
			id = idgen.NewRequestID()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the ID set by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
