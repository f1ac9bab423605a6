package gatekeeper

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/shopsplit/pkg/apperr"
	"github.com/Skotchmaster/shopsplit/pkg/logging"
	"github.com/labstack/echo/v4"
)

const (
	DefaultTimeout = 5 * time.Second
	DefaultMaxBody = 1 << 20
)

// IdentityField is the JSON field of the forwarded payload that carries the user.
const IdentityField = "user"

type ProxyOptions struct {
	// StripPrefix is removed from the inbound path before forwarding.
	StripPrefix string
	// StampIdentity overwrites IdentityField with the user set by
	// Authenticate: in the JSON body, or in the query string for requests
	// that carry no body. Requests without a user are rejected.
	StampIdentity bool
	// Timeout bounds dialing and waiting for the upstream response headers.
	Timeout time.Duration
	MaxBody int64
}

func NewProxy(target string, opts ProxyOptions) (echo.HandlerFunc, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("gatekeeper: upstream url needs scheme and host: " + target)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = DefaultMaxBody
	}

	baseTransport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:          200,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: opts.Timeout,
	}

	p := httputil.NewSingleHostReverseProxy(u)
	p.Transport = baseTransport

	origDirector := p.Director
	p.Director = func(req *http.Request) {
		originalHost := req.Host
		originalProto := "http"
		if req.TLS != nil {
			originalProto = "https"
		} else if xf := req.Header.Get("X-Forwarded-Proto"); xf != "" {
			originalProto = xf
		}

		origDirector(req)

		if opts.StripPrefix != "" && strings.HasPrefix(req.URL.Path, opts.StripPrefix) {
			req.URL.Path = strings.TrimPrefix(req.URL.Path, opts.StripPrefix)
			if rp := req.URL.RawPath; rp != "" && strings.HasPrefix(rp, opts.StripPrefix) {
				req.URL.RawPath = strings.TrimPrefix(rp, opts.StripPrefix)
			}
		}

		if opts.StampIdentity {
			// the backend trusts the payload, not the bearer
			req.Header.Del(echo.HeaderAuthorization)
		}
		if req.Header.Get("X-Forwarded-Proto") == "" {
			req.Header.Set("X-Forwarded-Proto", originalProto)
		}
		if req.Header.Get("X-Forwarded-Host") == "" && originalHost != "" {
			req.Header.Set("X-Forwarded-Host", originalHost)
		}
	}

	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logging.FromContext(r.Context()).Error("upstream_unavailable", "upstream", u.Host, "error", err)
		apperr.WriteJSON(w, apperr.New(apperr.KindServiceUnavailable, "upstream service unavailable"))
	}

	p.FlushInterval = 100 * time.Millisecond

	return func(c echo.Context) error {
		if opts.StampIdentity {
			user, ok := UserFrom(c)
			if !ok {
				return apperr.New(apperr.KindUnauthenticated, UnauthenticatedMessage)
			}
			r := c.Request()
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodDelete:
				q := r.URL.Query()
				q.Set(IdentityField, user)
				r.URL.RawQuery = q.Encode()
			default:
				if err := stampIdentity(r, user, opts.MaxBody); err != nil {
					return err
				}
			}
		}
		p.ServeHTTP(c.Response(), c.Request())
		return nil
	}, nil
}

// stampIdentity rewrites the JSON object body of r so IdentityField holds user.
// An empty body becomes an object with only that field.
func stampIdentity(r *http.Request, user string, maxBody int64) error {
	var raw []byte
	if r.Body != nil {
		b, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
		_ = r.Body.Close()
		if err != nil {
			return apperr.Wrap(apperr.KindValidation, "cannot read body", err)
		}
		if int64(len(b)) > maxBody {
			return apperr.New(apperr.KindValidation, "body too large")
		}
		raw = b
	}

	payload := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
			return apperr.New(apperr.KindValidation, "body must be a JSON object")
		}
	}

	id, err := json.Marshal(user)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "internal error", err)
	}
	payload[IdentityField] = id

	out, err := json.Marshal(payload)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "internal error", err)
	}

	r.Body = io.NopCloser(bytes.NewReader(out))
	r.ContentLength = int64(len(out))
	r.TransferEncoding = nil
	r.Header.Set(echo.HeaderContentLength, strconv.Itoa(len(out)))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	r.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(out)), nil }
	return nil
}
