package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/giteebridge/pkg/errors"
)

// CORS answers cross-origin requests from the whitelisted origins, so that
// browser based editors can call the bridge. A "*" entry admits any origin
// but never with credentials. Any request carrying an Origin outside the
// whitelist is refused before it reaches a handler: simple requests skip the
// preflight, and the bridge acts with the configured token.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	_, wildcard := origins["*"]

	allowed := func(origin string) bool {
		if origin == "" {
			return false
		}
		_, ok := origins[origin]
		return ok || wildcard
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		ok := allowed(origin)

		if ok {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
			h.Set("Access-Control-Expose-Headers", "Content-Length, Content-Type, X-Request-ID")
			h.Set("Access-Control-Max-Age", "86400")
			h.Add("Vary", "Origin")
			if _, listed := origins[origin]; listed {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			} else {
				h.Set("Access-Control-Allow-Origin", "*")
			}
		}

		if origin != "" && !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    errors.ErrCodeForbidden,
				"message": "Origin not allowed",
			})
			return
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
