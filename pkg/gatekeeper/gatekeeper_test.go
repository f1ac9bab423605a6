package gatekeeper

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Skotchmaster/shopsplit/pkg/apperr"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	srv   *httptest.Server
	calls atomic.Int32
	last  atomic.Value
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		b.last.Store(map[string]string{
			"path":          r.URL.Path,
			"user":          r.URL.Query().Get("user"),
			"body":          string(body),
			"authorization": r.Header.Get("Authorization"),
		})
		w.Header().Set("X-Backend", "orders")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) lastRequest() map[string]string {
	v, _ := b.last.Load().(map[string]string)
	return v
}

var tokensToUsers = ValidatorFunc(func(_ context.Context, token string) (string, error) {
	switch token {
	case "alice-token":
		return "alice", nil
	case "expired-token":
		return "", apperr.New(apperr.KindTokenExpired, "token expired")
	case "down":
		return "", apperr.New(apperr.KindServiceUnavailable, "auth service unavailable")
	default:
		return "", apperr.New(apperr.KindTokenMalformed, "token invalid")
	}
})

func newGateway(t *testing.T, target string) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	proxy, err := NewProxy(target, ProxyOptions{StripPrefix: "/api/v1", StampIdentity: true, Timeout: time.Second})
	require.NoError(t, err)
	e.POST("/api/v1/orders", proxy, Authenticate(tokensToUsers))
	return e
}

func call(e *echo.Echo, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"Bearer a b", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		token, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestGateway_StampsIdentityOverClientClaim(t *testing.T) {
	b := newBackend(t)
	e := newGateway(t, b.srv.URL)

	rec := call(e, "Bearer alice-token", `{"user":"mallory","items":[{"product_id":1}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "orders", rec.Header().Get("X-Backend"))

	require.EqualValues(t, 1, b.calls.Load())
	got := b.lastRequest()
	assert.Equal(t, "/orders", got["path"])
	assert.Empty(t, got["authorization"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(got["body"]), &payload))
	assert.Equal(t, "alice", payload["user"])
	assert.NotNil(t, payload["items"])
}

func TestGateway_StampsQueryOnGet(t *testing.T) {
	b := newBackend(t)
	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	proxy, err := NewProxy(b.srv.URL, ProxyOptions{StripPrefix: "/api/v1", StampIdentity: true})
	require.NoError(t, err)
	e.GET("/api/v1/orders", proxy, Authenticate(tokensToUsers))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?user=mallory&limit=5", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer alice-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "alice", b.lastRequest()["user"])
}

func TestGateway_EmptyBodyGetsIdentity(t *testing.T) {
	b := newBackend(t)
	e := newGateway(t, b.srv.URL)

	rec := call(e, "Bearer alice-token", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"user":"alice"}`, b.lastRequest()["body"])
}

func TestGateway_RejectsWithoutCallingBackend(t *testing.T) {
	b := newBackend(t)
	e := newGateway(t, b.srv.URL)

	tests := []struct {
		name string
		auth string
		body string
		code int
		kind apperr.Kind
	}{
		{"no header", "", `{}`, 401, apperr.KindUnauthenticated},
		{"wrong scheme", "Basic abc", `{}`, 401, apperr.KindUnauthenticated},
		{"bad token", "Bearer junk", `{}`, 401, apperr.KindTokenMalformed},
		{"expired token", "Bearer expired-token", `{}`, 401, apperr.KindTokenExpired},
		{"auth down", "Bearer down", `{}`, 503, apperr.KindServiceUnavailable},
		{"not an object", "Bearer alice-token", `[1,2]`, 400, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(e, tt.auth, tt.body)
			assert.Equal(t, tt.code, rec.Code)
			var body apperr.Body
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.kind, body.Error)
		})
	}

	rec := call(e, "", `{}`)
	var a apperr.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	rec = call(e, "Basic abc", `{}`)
	var b2 apperr.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b2))
	assert.Equal(t, a, b2, "missing and malformed headers look the same")
	assert.Equal(t, UnauthenticatedMessage, a.Message)

	assert.Zero(t, b.calls.Load())
}

func TestGateway_BackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	e := newGateway(t, target)
	rec := call(e, "Bearer alice-token", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body apperr.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperr.KindServiceUnavailable, body.Error)
}

func TestGateway_BackendTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	proxy, err := NewProxy(srv.URL, ProxyOptions{Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	e.POST("/orders", proxy)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewProxy_RejectsBadTarget(t *testing.T) {
	_, err := NewProxy("localhost:5001", ProxyOptions{})
	assert.Error(t, err)
}
