package middleware

import (
	"log/slog"

	loggingmw "github.com/Skotchmaster/shopsplit/pkg/middleware/logging"
	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
)

func Common(logger *slog.Logger) []echo.MiddlewareFunc {
	mws := []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
	}
	if logger != nil {
		mws = append(mws, loggingmw.RequestLogger(logger))
	}
	return mws
}

// Local wraps routes the gateway answers itself. Proxied responses keep the
// backend's own security headers.
func Local() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{ecM.Secure()}
}
