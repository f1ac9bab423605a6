// Package authclient calls the auth service's validate endpoint on behalf of
// the gateway.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Skotchmaster/shopsplit/pkg/apperr"
)

const DefaultTimeout = 5 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(authServiceURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(authServiceURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type validateRequest struct {
	Token string `json:"token"`
}

type validateResponse struct {
	User string `json:"user"`
}

// Validate resolves an access token to the user it was issued for.
//
// Rejections from the auth service come back as the *apperr.Error it sent.
// Transport failures and 5xx answers become KindServiceUnavailable.
func (c *Client) Validate(ctx context.Context, token string) (string, error) {
	body, err := json.Marshal(validateRequest{Token: token})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/validate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindServiceUnavailable, "auth service unavailable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return "", apperr.New(apperr.KindServiceUnavailable, "auth service unavailable")
	case resp.StatusCode != http.StatusOK:
		return "", apperr.Decode(resp.StatusCode, resp.Body)
	}

	var out validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.User == "" {
		return "", apperr.Wrap(apperr.KindServiceUnavailable, "auth service returned an unreadable answer", err)
	}
	return out.User, nil
}
