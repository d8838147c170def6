// Package middleware provides the gin middleware of the bridge server.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/pkg/errors"
	"github.com/verustcode/giteebridge/pkg/logger"
	"github.com/verustcode/giteebridge/pkg/telemetry"
)

// Context keys set by the middleware
const (
	ContextKeyRequestID     = "request_id"
	ContextKeyUpstreamToken = "upstream_token"
)

// LoggerConfig holds the configuration for the Logger middleware
type LoggerConfig struct {
	// AccessLog logs successful requests at info level. Failed requests are
	// always logged.
	AccessLog bool
}

// Logger records a metric for every request and logs failed ones. A nil cfg
// disables the access log.
func Logger(cfg *LoggerConfig) gin.HandlerFunc {
	accessLog := cfg != nil && cfg.AccessLog
	metrics := telemetry.GetMetrics()

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		// one label for unmatched paths keeps cardinality bounded
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Context(), c.Request.Method, route, status, latency.Seconds())

		if status < http.StatusBadRequest && !accessLog {
			return
		}
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", latency),
			zap.Bool("caller_token", GetUpstreamToken(c) != ""),
		}
		if id := c.GetString(ContextKeyRequestID); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("Request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("Request rejected", fields...)
		default:
			logger.Info("Request", fields...)
		}
	}
}

// Recovery turns a panic in a handler into a 500 response
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic recovered",
					zap.Any("error", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    errors.ErrCodeInternal,
					"message": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
