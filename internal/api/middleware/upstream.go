package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/pkg/errors"
	"github.com/verustcode/giteebridge/pkg/logger"
)

// UpstreamToken takes a hosting service token from the Authorization header
// ("Bearer <token>" or "token <token>") so callers act as themselves rather
// than as the configured account. Requests without the header use the
// configured token; any other scheme is rejected.
func UpstreamToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, token, _ := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if token == "" || !(strings.EqualFold(scheme, "Bearer") || strings.EqualFold(scheme, "token")) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    errors.ErrCodeUnauthorized,
				"message": "Authorization must be 'Bearer <token>' or 'token <token>'",
			})
			return
		}

		logger.Debug("Using caller supplied token", zap.String("token", logger.MaskSecret(token)))
		c.Set(ContextKeyUpstreamToken, token)
		c.Next()
	}
}

// GetUpstreamToken returns the token set by UpstreamToken, if any
func GetUpstreamToken(c *gin.Context) string {
	return c.GetString(ContextKeyUpstreamToken)
}
