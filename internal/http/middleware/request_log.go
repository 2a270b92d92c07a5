package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/writecoach-backend/internal/platform/ctxutil"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

// Probe routes are logged at debug so they do not drown request logs.
var quietRoutes = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

// RequestLogger writes one line per request once the handler chain is done.
// The logger hashes child and session ids.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx := c.Request.Context()
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", ctxutil.RequestID(ctx),
		}
		if td := ctxutil.GetTraceData(ctx); td != nil && td.TraceID != "" {
			fields = append(fields, "trace_id", td.TraceID)
		}
		if child := ctxutil.ChildID(ctx); child != uuid.Nil {
			fields = append(fields, "child_id", child.String())
		}
		if sid := c.Param("id"); sid != "" && route == "/api/sessions/:id" {
			fields = append(fields, "session_id", sid)
		}
		if last := c.Errors.Last(); last != nil && status >= 500 {
			fields = append(fields, "error", last.Error())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case quietRoutes[route]:
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
