// Package tokens issues and verifies the HS256 tokens every service trusts.
//
// Verification is a pure function of the token, the shared secret and the
// clock. It never touches storage and is safe for unbounded concurrent use.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	ErrMalformed = errors.New("token malformed")
	ErrExpired   = errors.New("token expired")
	ErrWrongKind = errors.New("token kind mismatch")
)

// Issued is a freshly signed token and the instant it stops being valid.
type Issued struct {
	Value     string
	ExpiresAt time.Time
}

type Authority struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Authority)

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) { a.now = now }
}

func WithTTL(access, refresh time.Duration) Option {
	return func(a *Authority) {
		if access > 0 {
			a.accessTTL = access
		}
		if refresh > 0 {
			a.refreshTTL = refresh
		}
	}
}

func New(secret []byte, opts ...Option) *Authority {
	a := &Authority{
		secret:     secret,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Authority) AccessTTL() time.Duration  { return a.accessTTL }
func (a *Authority) RefreshTTL() time.Duration { return a.refreshTTL }

func (a *Authority) IssueAccess(subject string) (Issued, error) {
	return a.issue(subject, KindAccess, a.accessTTL, "")
}

// IssueRefresh adds a random jti so two refresh tokens for the same user in
// the same second are still different strings.
func (a *Authority) IssueRefresh(subject string) (Issued, error) {
	return a.issue(subject, KindRefresh, a.refreshTTL, uuid.NewString())
}

func (a *Authority) issue(subject string, kind Kind, ttl time.Duration, jti string) (Issued, error) {
	if subject == "" {
		return Issued{}, errors.New("tokens: empty subject")
	}
	now := a.now()
	exp := now.Add(ttl)
	claims := Claims{
		User: subject,
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        jti,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Issued{}, fmt.Errorf("tokens: sign %s token: %w", kind, err)
	}
	return Issued{Value: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks structure, signature and expiry.
//
// ErrExpired is only returned after the signature has verified, and the
// decoded claims are returned alongside it so callers can clean up state
// keyed by the token's subject.
func (a *Authority) Verify(token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid):
		if claims.User == "" {
			return nil, fmt.Errorf("%w: missing user claim", ErrMalformed)
		}
		return &claims, ErrExpired
	default:
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if claims.User == "" {
		return nil, fmt.Errorf("%w: missing user claim", ErrMalformed)
	}
	if claims.Type != KindAccess && claims.Type != KindRefresh {
		return nil, fmt.Errorf("%w: unknown token type %q", ErrMalformed, claims.Type)
	}
	return &claims, nil
}

// VerifyKind is Verify plus the kind check.
func (a *Authority) VerifyKind(token string, want Kind) (*Claims, error) {
	claims, err := a.Verify(token)
	if err != nil {
		if errors.Is(err, ErrExpired) && claims.Type != want {
			return nil, ErrWrongKind
		}
		return claims, err
	}
	if claims.Type != want {
		return nil, ErrWrongKind
	}
	return claims, nil
}
