package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/writecoach-backend/internal/observability"
)

// Metrics records request counts, latency and in-flight requests. Routes
// are labelled by their pattern so ids never reach label values.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		m.APIInflightAdd(1)
		start := time.Now()
		defer func() {
			m.APIInflightAdd(-1)
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
		}()
		c.Next()
	}
}
