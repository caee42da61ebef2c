package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/accountd/pkg/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics records request latency per route template. Requests that match no
// route share one label so arbitrary paths cannot grow the series count.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}

		status := strconv.Itoa(c.Writer.Status())
		metrics.APILatency.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
