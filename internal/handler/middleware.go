package handler

import (
	"time"

	"stx-trader/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request through the shared zap logger.
// Paths in skip are not logged.
func RequestLogger(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if _, ok := skipped[c.FullPath()]; ok {
			return
		}
		log := logger.Get().With(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		if len(c.Errors) > 0 {
			log.Warnf("request failed: %s", c.Errors.String())
			return
		}
		log.Infof("request served")
	}
}
