package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopsplit/pkg/logging"
)

// RequestLogger puts a request-scoped logger into the request context and
// logs one line per completed request. It must run after echo's RequestID
// middleware, which owns the X-Request-ID response header.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := base.With(
				"method", req.Method,
				"path", c.Path(),
				"url", req.URL.Path,
				"remote_ip", c.RealIP(),
			)
			if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
				l = l.With("request_id", rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				// render now so the logged status is the one the client sees
				c.Echo().HTTPErrorHandler(err, c)
			}
			status := c.Response().Status

			level := levelFor(status, err)
			attrs := []any{"status", status, "duration_ms", time.Since(start).Milliseconds()}
			switch {
			case level == slog.LevelInfo:
				attrs = append(attrs, "bytes", c.Response().Size)
			case level == slog.LevelError && err != nil:
				attrs = append(attrs, "error", err.Error())
			}
			l.Log(req.Context(), level, "request completed", attrs...)
			return nil
		}
	}
}

func levelFor(status int, err error) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case err != nil:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
