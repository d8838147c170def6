package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/internal/git/rest"
	"github.com/verustcode/giteebridge/pkg/logger"
)

// ErrorHandler writes the last error attached to the context as a JSON
// error body. Errors of the REST layer are mapped to application errors
// first, so a rejected upstream token answers 401 and an unreachable server
// 502. Outside debug mode the message and details of server-side failures
// are hidden.
func ErrorHandler(debugMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}

		appErr := rest.ToAppError(c.Errors.Last().Err)
		status := appErr.HTTPStatus()
		serverSide := status >= http.StatusInternalServerError

		body := gin.H{"code": appErr.Code, "message": appErr.Message}
		if serverSide {
			logger.Error("Request error",
				zap.String("code", string(appErr.Code)),
				zap.String("path", c.Request.URL.Path),
				zap.Error(appErr),
			)
			if !debugMode {
				body["message"] = http.StatusText(status)
			}
		}
		if appErr.Details != nil && (debugMode || !serverSide) {
			body["details"] = appErr.Details
		}
		if id := GetRequestID(c); id != "" {
			body["request_id"] = id
		}
		c.JSON(status, body)
	}
}
