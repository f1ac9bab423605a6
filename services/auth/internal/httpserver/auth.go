package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/shopsplit/pkg/logging"
	"github.com/Skotchmaster/shopsplit/pkg/validation"
	"github.com/Skotchmaster/shopsplit/services/auth/internal/service"
	"github.com/Skotchmaster/shopsplit/services/auth/internal/transport"
	"github.com/labstack/echo/v4"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.Credentials
	if err := validation.BindAndValidate(c, &req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return err
	}

	if err := h.Svc.Register(ctx, req.Username, req.Password); err != nil {
		return err
	}

	l.Info("register_successful", "username", req.Username)
	return c.JSON(http.StatusCreated, transport.Message{Message: "user created"})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.Credentials
	if err := validation.BindAndValidate(c, &req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}

	l.Info("login_successful", "username", req.Username)
	return c.JSON(http.StatusOK, transport.TokenPair{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.RefreshRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.AccessResponse{AccessToken: res.AccessToken})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	var req transport.LogoutRequest
	// an unreadable body is treated as a logout with no token
	_ = c.Bind(&req)

	if err := h.Svc.LogOut(ctx, req.RefreshToken); err != nil {
		return err
	}

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, transport.Message{Message: "logged out"})
}

// Validate is called by the gateway only.
func (h *AuthHTTP) Validate(c echo.Context) error {
	var req transport.ValidateRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.Svc.Validate(c.Request().Context(), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.ValidateResponse{User: user})
}
