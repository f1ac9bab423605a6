package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGateway(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "a1", "refresh_token": "r1"})
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "logged out"})
	})
	mux.HandleFunc("POST /api/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer a1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthenticated","message":"authentication required"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"ok","order_id":"o1","total":7.5}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestShopctl_LoginOrderLogout(t *testing.T) {
	srv := fakeGateway(t)
	session := filepath.Join(t.TempDir(), "s", "session.json")
	common := []string{"--gateway", srv.URL, "--session", session}

	out, err := run(t, append([]string{"login", "-u", "alice", "-p", "pw1"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as alice")

	s, err := loadSession(session)
	require.NoError(t, err)
	assert.Equal(t, "a1", s.AccessToken)
	assert.Equal(t, "r1", s.RefreshToken)

	out, err = run(t, append([]string{"order", "submit", "--items", `[{"product_id":1,"quantity":1,"total_price":7.5}]`}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "order o1 accepted, total 7.50")

	_, err = run(t, append([]string{"logout"}, common...)...)
	require.NoError(t, err)
	_, err = os.Stat(session)
	assert.True(t, os.IsNotExist(err))

	_, err = run(t, append([]string{"order", "submit", "--items", `[]`}, common...)...)
	assert.ErrorContains(t, err, "not logged in")
}
