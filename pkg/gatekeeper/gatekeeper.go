// Package gatekeeper authenticates inbound requests by delegating token
// validation to the auth service, then forwards them to a trusted backend
// with the resolved identity stamped into the payload.
package gatekeeper

import (
	"context"
	"net/http"
	"strings"

	"github.com/Skotchmaster/shopsplit/pkg/apperr"
	"github.com/Skotchmaster/shopsplit/pkg/logging"
	"github.com/labstack/echo/v4"
)

// CtxUser is the echo context key holding the authenticated username.
const CtxUser = "user"

// UnauthenticatedMessage is returned for every missing or unusable
// Authorization header.
const UnauthenticatedMessage = "authentication required"

type Validator interface {
	Validate(ctx context.Context, token string) (string, error)
}

type ValidatorFunc func(ctx context.Context, token string) (string, error)

func (f ValidatorFunc) Validate(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// Authenticate rejects the request before next runs unless v resolves the
// bearer token to a user.
func Authenticate(v Validator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("mw", "gatekeeper")

			token, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				l.Warn("auth_rejected", "reason", "missing or malformed authorization header")
				return apperr.New(apperr.KindUnauthenticated, UnauthenticatedMessage)
			}

			user, err := v.Validate(ctx, token)
			if err != nil {
				ae := apperr.From(err)
				switch ae.Status() {
				case http.StatusUnauthorized:
					l.Warn("auth_rejected", "reason", ae.Kind)
					return ae
				case http.StatusServiceUnavailable:
					l.Error("auth_unavailable", "error", err)
					return apperr.New(apperr.KindServiceUnavailable, "auth service unavailable")
				default:
					l.Warn("auth_rejected", "reason", ae.Kind)
					return apperr.New(apperr.KindUnauthenticated, UnauthenticatedMessage)
				}
			}

			c.Set(CtxUser, user)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, logging.FromContext(ctx).With("user", user))))
			return next(c)
		}
	}
}

// UserFrom returns the user set by Authenticate.
func UserFrom(c echo.Context) (string, bool) {
	u, ok := c.Get(CtxUser).(string)
	return u, ok && u != ""
}
