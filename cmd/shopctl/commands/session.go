package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Skotchmaster/shopsplit/pkg/apperr"
	"github.com/Skotchmaster/shopsplit/pkg/shopclient"
)

func loadSession(path string) (shopclient.Session, error) {
	var s shopclient.Session
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, fmt.Errorf("not logged in (no session at %s)", path)
		}
		return s, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("read session %s: %w", path, err)
	}
	return s, nil
}

func saveSession(path string, s shopclient.Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func removeSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Hint suggests a next step for errors the user can fix.
func Hint(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindTokenExpired, apperr.KindRefreshUnknown, apperr.KindTokenMalformed:
		return "session is no longer valid: run `shopctl login`"
	case apperr.KindServiceUnavailable:
		return "gateway or a backend service is unreachable: check --gateway"
	case apperr.KindPaymentRejected:
		return "payment was declined: try again"
	}
	return ""
}
