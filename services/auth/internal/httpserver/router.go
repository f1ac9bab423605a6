package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Skotchmaster/shopsplit/pkg/apperr"
	loggingmw "github.com/Skotchmaster/shopsplit/pkg/middleware/logging"
	"github.com/Skotchmaster/shopsplit/pkg/validation"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Deps struct {
	AuthHandler *AuthHTTP
	Logger      *slog.Logger
	// Ready reports whether backing storage is reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

func NewEcho(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Validator = validation.New()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if d.Logger != nil {
		e.Use(loggingmw.RequestLogger(d.Logger))
	}

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return apperr.Wrap(apperr.KindServiceUnavailable, "storage unavailable", err)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	g := e.Group("/auth")
	g.POST("/register", d.AuthHandler.Register)
	g.POST("/login", d.AuthHandler.Login)
	g.POST("/refresh", d.AuthHandler.Refresh)
	g.POST("/logout", d.AuthHandler.LogOut)
	g.POST("/validate", d.AuthHandler.Validate)
}
