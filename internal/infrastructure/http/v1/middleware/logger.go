package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pharmaledger/pkg/logger"
)

// Logger middleware stores log in the request context and writes one
// access line per request. 4xx lines are warnings and 5xx lines errors.
func Logger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Default()
	}
	log = log.WithComponent("http")

	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.Last().Error())
		}

		reqLog := log.WithContext(c.Request.Context())
		switch {
		case status >= http.StatusInternalServerError:
			reqLog.Errorw("http request", fields...)
		case status >= http.StatusBadRequest:
			reqLog.Warnw("http request", fields...)
		default:
			reqLog.Infow("http request", fields...)
		}
	}
}
