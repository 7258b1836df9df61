package middleware

import (
	"time"

	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/logger"
	"github.com/gin-gonic/gin"
)

// RequestLogger logs each request with method, path, status, and latency.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		rawQuery := c.Request.URL.RawQuery

		c.Next()

		if rawQuery != "" {
			path = path + "?" + rawQuery
		}

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}

		if c.Writer.Status() >= 500 {
			logger.Error("Request failed", fields)
		} else {
			logger.Info("Request processed", fields)
		}
	}
}
