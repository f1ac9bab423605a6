// Package shopclient talks to the gateway on behalf of an end user.
package shopclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Skotchmaster/shopsplit/pkg/apperr"
)

var ErrNotLoggedIn = errors.New("shopclient: session has no tokens")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(gatewayURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(gatewayURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type OrderItem struct {
	ProductID  int64   `json:"product_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

type OrderReceipt struct {
	Message string  `json:"message"`
	Status  string  `json:"status"`
	OrderID string  `json:"order_id"`
	Total   float64 `json:"total"`
}

type Order struct {
	ID        string      `json:"order_id"`
	User      string      `json:"user"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []OrderItem `json:"items"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/register", "", credentials{username, password}, nil)
}

func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", "", credentials{username, password}, &out); err != nil {
		return Session{}, err
	}
	return Session{Username: username, AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}, nil
}

// Refresh returns s with a new access token. The refresh token is unchanged.
func (c *Client) Refresh(ctx context.Context, s Session) (Session, error) {
	if s.RefreshToken == "" {
		return s, ErrNotLoggedIn
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", "", refreshBody{s.RefreshToken}, &out); err != nil {
		return s, err
	}
	return s.WithAccessToken(out.AccessToken), nil
}

func (c *Client) Logout(ctx context.Context, s Session) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/logout", "", refreshBody{s.RefreshToken}, nil)
}

// SubmitOrder places an order as the session's user. The returned Session
// differs from s when the access token had to be refreshed.
func (c *Client) SubmitOrder(ctx context.Context, s Session, items []OrderItem) (OrderReceipt, Session, error) {
	var receipt OrderReceipt
	body := struct {
		Items []OrderItem `json:"items"`
	}{items}
	s, err := c.authorized(ctx, s, func(token string) error {
		return c.do(ctx, http.MethodPost, "/api/v1/orders", token, body, &receipt)
	})
	return receipt, s, err
}

func (c *Client) ListOrders(ctx context.Context, s Session, limit, offset int) ([]Order, Session, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if offset > 0 {
		q.Set("offset", fmt.Sprint(offset))
	}
	path := "/api/v1/orders"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var orders []Order
	s, err := c.authorized(ctx, s, func(token string) error {
		return c.do(ctx, http.MethodGet, path, token, nil, &orders)
	})
	return orders, s, err
}

// authorized runs call with the session's access token. When the gateway
// answers token_expired it refreshes once and retries.
func (c *Client) authorized(ctx context.Context, s Session, call func(token string) error) (Session, error) {
	if !s.LoggedIn() {
		return s, ErrNotLoggedIn
	}
	err := call(s.AccessToken)
	if !errors.Is(err, apperr.ErrTokenExpired) {
		return s, err
	}

	renewed, rerr := c.Refresh(ctx, s)
	if rerr != nil {
		return s, rerr
	}
	return renewed, call(renewed.AccessToken)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindServiceUnavailable, "gateway unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperr.Decode(resp.StatusCode, resp.Body)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
