package http

import (
	"time"

	"github.com/labstack/echo/v4"

	"feedtrans/internal/logger"
)

// RequestLoggerMiddleware logs every request once it has been served.
// Server errors are logged at error, client errors at warn and the rest at
// debug so that feed readers polling /feed.xml stay quiet.
func RequestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			log, result := logger.Debug, "ok"
			switch {
			case status >= 500:
				log, result = logger.Error, "failed"
			case status >= 400:
				log, result = logger.Warn, "failed"
			}
			log("http request",
				"module", "http",
				"action", "request",
				"resource", "http",
				"result", result,
				"method", req.Method,
				"path", req.URL.Path,
				"status_code", status,
				"bytes", c.Response().Size,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
			)
			return nil
		}
	}
}
