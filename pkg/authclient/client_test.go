package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Skotchmaster/shopsplit/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Validate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/validate", r.URL.Path)
		var req validateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		switch req.Token {
		case "good":
			_ = json.NewEncoder(w).Encode(validateResponse{User: "alice"})
		case "expired":
			apperr.WriteJSON(w, apperr.New(apperr.KindTokenExpired, "token expired"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	ctx := context.Background()

	user, err := c.Validate(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "alice", user)

	_, err = c.Validate(ctx, "expired")
	assert.ErrorIs(t, err, apperr.ErrTokenExpired)

	_, err = c.Validate(ctx, "boom")
	assert.ErrorIs(t, err, apperr.ErrServiceUnavailable)
}

func TestClient_Validate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Validate(context.Background(), "x")
	assert.ErrorIs(t, err, apperr.ErrServiceUnavailable)
}

func TestClient_Validate_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond).Validate(context.Background(), "x")
	assert.ErrorIs(t, err, apperr.ErrServiceUnavailable)
}
