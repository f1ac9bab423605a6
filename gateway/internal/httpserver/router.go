package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Skotchmaster/shopsplit/gateway/internal/middleware"
	"github.com/Skotchmaster/shopsplit/pkg/apperr"
	"github.com/Skotchmaster/shopsplit/pkg/gatekeeper"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	AuthURL  string
	OrderURL string

	// Validator resolves bearer tokens. It is normally an authclient.Client
	// pointed at AuthURL.
	Validator       gatekeeper.Validator
	UpstreamTimeout time.Duration
	Logger          *slog.Logger
}

func NewEcho(d *Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler

	if err := Register(e, d); err != nil {
		return nil, err
	}
	return e, nil
}

func Register(e *echo.Echo, d *Deps) error {
	for _, m := range middleware.Common(d.Logger) {
		e.Use(m)
	}

	local := middleware.Local()
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, local...)
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, local...)

	authProxy, err := gatekeeper.NewProxy(d.AuthURL, gatekeeper.ProxyOptions{
		StripPrefix: "/api/v1",
		Timeout:     d.UpstreamTimeout,
	})
	if err != nil {
		return err
	}

	orderProxy, err := gatekeeper.NewProxy(d.OrderURL, gatekeeper.ProxyOptions{
		StripPrefix:   "/api/v1",
		StampIdentity: true,
		Timeout:       d.UpstreamTimeout,
	})
	if err != nil {
		return err
	}

	// /auth/validate stays internal to the auth service.
	auth := e.Group("/api/v1/auth")
	auth.POST("/register", authProxy)
	auth.POST("/login", authProxy)
	auth.POST("/refresh", authProxy)
	auth.POST("/logout", authProxy)

	// route-level middleware: a group Use would also catch unknown paths
	authn := gatekeeper.Authenticate(d.Validator)
	e.POST("/api/v1/orders", orderProxy, authn)
	e.GET("/api/v1/orders", orderProxy, authn)
	e.GET("/api/v1/orders/:id", orderProxy, authn)

	return nil
}
