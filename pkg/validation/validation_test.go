package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Skotchmaster/shopsplit/pkg/apperr"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

func newContext(body string) echo.Context {
	e := echo.New()
	e.Validator = New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "ok", body: `{"username":"alice","password":"pw1"}`},
		{name: "missing password", body: `{"username":"alice"}`, wantErr: "password is required"},
		{name: "empty body", body: ``, wantErr: "username is required"},
		{name: "too long", body: `{"username":"` + strings.Repeat("a", 65) + `","password":"x"}`, wantErr: "username must be at most 64"},
		{name: "password over 72 bytes", body: `{"username":"alice","password":"` + strings.Repeat("п", 37) + `"}`, wantErr: "password must be at most 72 bytes"},
		{name: "password of 72 bytes", body: `{"username":"alice","password":"` + strings.Repeat("п", 36) + `"}`},
		{name: "not json", body: `{"username":`, wantErr: "invalid body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req credentials
			err := BindAndValidate(newContext(tt.body), &req)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "alice", req.Username)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
