package service

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/shopsplit/pkg/apperr"
	"github.com/Skotchmaster/shopsplit/pkg/events"
	pkg_hash "github.com/Skotchmaster/shopsplit/pkg/hash"
	"github.com/Skotchmaster/shopsplit/pkg/logging"
	"github.com/Skotchmaster/shopsplit/pkg/tokens"
	"github.com/Skotchmaster/shopsplit/services/auth/internal/models"
	"github.com/Skotchmaster/shopsplit/services/auth/internal/repo"
)

type CredentialStore interface {
	AddUser(ctx context.Context, username, password string) error
	FindUser(ctx context.Context, username string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
}

type RefreshStore interface {
	StoreRefresh(ctx context.Context, username, token string, expiresAt time.Time) error
	FindRefresh(ctx context.Context, username, token string) (*models.RefreshToken, error)
	DeleteRefresh(ctx context.Context, token string) error
}

type AuthService struct {
	Users        CredentialStore
	RefreshStore RefreshStore
	Tokens       *tokens.Authority
	Events       events.Publisher
	Now          func() time.Time
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

type RefreshResult struct {
	AccessToken string
	AccessExp   time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) publish(ctx context.Context, typ, username string) {
	if s.Events == nil {
		return
	}
	ev := events.Event{
		Type:       typ,
		OccurredAt: s.now().UTC(),
		Data:       map[string]string{"username": username},
	}
	if err := s.Events.Publish(ctx, events.TopicUserEvents, username, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", typ, "error", err)
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) error {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if username == "" || password == "" {
		return apperr.New(apperr.KindValidation, "username and password are required")
	}
	if len(password) > pkg_hash.MaxPasswordBytes {
		return apperr.New(apperr.KindValidation, "password must be at most 72 bytes")
	}

	if err := s.Users.AddUser(ctx, username, password); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 409, "reason", "user already exist")
			return apperr.New(apperr.KindConflict, "username already taken")
		}
		l.Error("register_error", "status", 500, "error", err)
		return apperr.Wrap(apperr.KindInternal, "internal error", err)
	}

	s.publish(ctx, "user_registered", username)
	return nil
}

// Login returns the same InvalidCredentials error whether the user is unknown
// or the password is wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		return nil, apperr.New(apperr.KindValidation, "username and password are required")
	}

	user, err := s.Users.FindUser(ctx, username)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		l.Error("login_error", "status", 500, "error", err)
		return nil, apperr.Wrap(apperr.KindInternal, "internal error", err)
	}
	if !s.Users.CheckPassword(user, password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		return nil, apperr.New(apperr.KindInvalidCredentials, "invalid username or password")
	}

	access, err := s.Tokens.IssueAccess(user.Username)
	if err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return nil, apperr.Wrap(apperr.KindInternal, "internal error", err)
	}
	refresh, err := s.Tokens.IssueRefresh(user.Username)
	if err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return nil, apperr.Wrap(apperr.KindInternal, "internal error", err)
	}
	if err := s.RefreshStore.StoreRefresh(ctx, user.Username, refresh.Value, refresh.ExpiresAt); err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot store refresh token", "error", err)
		return nil, apperr.Wrap(apperr.KindInternal, "internal error", err)
	}

	s.publish(ctx, "user_logged_in", user.Username)
	return &LoginResult{
		AccessToken:  access.Value,
		RefreshToken: refresh.Value,
		AccessExp:    access.ExpiresAt,
		RefreshExp:   refresh.ExpiresAt,
	}, nil
}

// Refresh mints a new access token. The refresh token itself is not rotated:
// it stays usable until logout or its own expiry.
//
// A refresh token is accepted only if it verifies, is of kind refresh, and
// its row is still in the store. A missing row is reported as Unknown before
// any expiry check; a stale row is deleted before Expired is returned.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if refreshToken == "" {
		return nil, apperr.New(apperr.KindValidation, "refresh_token is required")
	}

	claims, err := s.Tokens.Verify(refreshToken)
	switch {
	case err == nil:
	case errors.Is(err, tokens.ErrExpired):
		if claims.Type != tokens.KindRefresh {
			return nil, apperr.New(apperr.KindTokenWrongKind, "not a refresh token")
		}
		// a revoked token stays unknown even after its expiry passes
		if _, ferr := s.RefreshStore.FindRefresh(ctx, claims.User, refreshToken); ferr != nil {
			if errors.Is(ferr, repo.ErrNotFound) {
				l.Warn("refresh_failed", "status", 401, "reason", "refresh token unknown", "username", claims.User)
				return nil, apperr.New(apperr.KindRefreshUnknown, "refresh token unknown")
			}
			l.Error("refresh_error", "status", 500, "error", ferr)
			return nil, apperr.Wrap(apperr.KindInternal, "internal error", ferr)
		}
		if derr := s.RefreshStore.DeleteRefresh(ctx, refreshToken); derr != nil {
			l.Error("refresh_cleanup_failed", "error", derr)
		}
		l.Warn("refresh_failed", "status", 401, "reason", "refresh token expired", "username", claims.User)
		return nil, apperr.New(apperr.KindTokenExpired, "refresh token expired")
	default:
		l.Warn("refresh_failed", "status", 401, "reason", "refresh token invalid", "error", err)
		return nil, apperr.New(apperr.KindTokenMalformed, "refresh token invalid")
	}

	if claims.Type != tokens.KindRefresh {
		l.Warn("refresh_failed", "status", 401, "reason", "wrong token type")
		return nil, apperr.New(apperr.KindTokenWrongKind, "not a refresh token")
	}

	row, err := s.RefreshStore.FindRefresh(ctx, claims.User, refreshToken)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "refresh token unknown", "username", claims.User)
			return nil, apperr.New(apperr.KindRefreshUnknown, "refresh token unknown")
		}
		l.Error("refresh_error", "status", 500, "error", err)
		return nil, apperr.Wrap(apperr.KindInternal, "internal error", err)
	}

	// The row carries its own expiry; honor it even if the signed claim disagrees.
	if row.Expired(s.now()) {
		if derr := s.RefreshStore.DeleteRefresh(ctx, refreshToken); derr != nil {
			l.Error("refresh_cleanup_failed", "error", derr)
		}
		l.Warn("refresh_failed", "status", 401, "reason", "stored refresh token expired", "username", claims.User)
		return nil, apperr.New(apperr.KindTokenExpired, "refresh token expired")
	}

	access, err := s.Tokens.IssueAccess(claims.User)
	if err != nil {
		l.Error("refresh_error", "status", 500, "error", err)
		return nil, apperr.Wrap(apperr.KindInternal, "internal error", err)
	}
	return &RefreshResult{AccessToken: access.Value, AccessExp: access.ExpiresAt}, nil
}

// Validate resolves an access token to its user. It reads no storage.
func (s *AuthService) Validate(ctx context.Context, accessToken string) (string, error) {
	if accessToken == "" {
		return "", apperr.New(apperr.KindValidation, "token is required")
	}
	claims, err := s.Tokens.VerifyKind(accessToken, tokens.KindAccess)
	switch {
	case err == nil:
		return claims.User, nil
	case errors.Is(err, tokens.ErrWrongKind):
		return "", apperr.New(apperr.KindTokenWrongKind, "not an access token")
	case errors.Is(err, tokens.ErrExpired):
		return "", apperr.New(apperr.KindTokenExpired, "token expired")
	default:
		return "", apperr.New(apperr.KindTokenMalformed, "token invalid")
	}
}

// LogOut deletes the stored row for refreshToken. It succeeds when the token
// is empty or was already gone.
func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.RefreshStore.DeleteRefresh(ctx, refreshToken); err != nil {
		logging.FromContext(ctx).Error("logout_failed", "status", 500, "reason", "cannot revoke refresh token", "error", err)
		return apperr.Wrap(apperr.KindInternal, "internal error", err)
	}
	if claims, err := s.Tokens.Verify(refreshToken); claims != nil && (err == nil || errors.Is(err, tokens.ErrExpired)) {
		s.publish(ctx, "user_logged_out", claims.User)
	}
	return nil
}
