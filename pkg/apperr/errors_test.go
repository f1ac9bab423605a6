package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_Status(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindInvalidCredentials, http.StatusUnauthorized},
		{KindTokenMalformed, http.StatusUnauthorized},
		{KindTokenExpired, http.StatusUnauthorized},
		{KindTokenWrongKind, http.StatusUnauthorized},
		{KindRefreshUnknown, http.StatusUnauthorized},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindPaymentRejected, http.StatusPaymentRequired},
		{KindNotFound, http.StatusNotFound},
		{KindServiceUnavailable, http.StatusServiceUnavailable},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.Status(), string(tt.kind))
	}
}

func TestError_IsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("login: %w", New(KindConflict, "username already taken"))

	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(KindServiceUnavailable, "auth service unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dial tcp")
}

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{name: "typed", err: New(KindRefreshUnknown, "refresh token unknown"), wantStatus: 401, wantKind: `"refresh_unknown"`},
		{name: "echo http error", err: echo.NewHTTPError(http.StatusNotFound, "not found"), wantStatus: 404, wantKind: `"not_found"`},
		{name: "untyped", err: errors.New("db exploded"), wantStatus: 500, wantKind: `"internal"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			HTTPErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantKind)
			assert.NotContains(t, rec.Body.String(), "exploded")
		})
	}
}

func TestDecode(t *testing.T) {
	e := Decode(http.StatusUnauthorized, strings.NewReader(`{"error":"token_expired","message":"token expired"}`))
	require.NotNil(t, e)
	assert.Equal(t, KindTokenExpired, e.Kind)
	assert.Equal(t, "token expired", e.Message)

	e = Decode(http.StatusBadGateway, strings.NewReader("<html>bad gateway</html>"))
	assert.Equal(t, KindServiceUnavailable, e.Kind)
}
