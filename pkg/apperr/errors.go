// Package apperr is the single error type shared by every service. An Error
// carries a typed Kind, and the Kind decides the HTTP status.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation         Kind = "validation"
	KindConflict           Kind = "conflict"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindTokenMalformed     Kind = "token_malformed"
	KindTokenExpired       Kind = "token_expired"
	KindTokenWrongKind     Kind = "token_wrong_kind"
	KindRefreshUnknown     Kind = "refresh_unknown"
	KindUnauthenticated    Kind = "unauthenticated"
	KindPaymentRejected    Kind = "payment_rejected"
	KindNotFound           Kind = "not_found"
	KindServiceUnavailable Kind = "service_unavailable"
	KindInternal           Kind = "internal"
)

func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindInvalidCredentials, KindTokenMalformed, KindTokenExpired,
		KindTokenWrongKind, KindRefreshUnknown, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindPaymentRejected:
		return http.StatusPaymentRequired
	case KindNotFound:
		return http.StatusNotFound
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrTokenMalformed     = &Error{Kind: KindTokenMalformed}
	ErrTokenExpired       = &Error{Kind: KindTokenExpired}
	ErrTokenWrongKind     = &Error{Kind: KindTokenWrongKind}
	ErrRefreshUnknown     = &Error{Kind: KindRefreshUnknown}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated}
	ErrPaymentRejected    = &Error{Kind: KindPaymentRejected}
	ErrServiceUnavailable = &Error{Kind: KindServiceUnavailable}
	ErrInternal           = &Error{Kind: KindInternal}
)

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the package sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func (e *Error) Status() int { return e.Kind.Status() }

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// KindForStatus picks a kind for a bare status code, used when a peer or echo
// itself answered without an apperr body.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthenticated
	case status == http.StatusPaymentRequired:
		return KindPaymentRejected
	case status == http.StatusNotFound || status == http.StatusMethodNotAllowed:
		return KindNotFound
	case status == http.StatusServiceUnavailable || status == http.StatusBadGateway || status == http.StatusGatewayTimeout:
		return KindServiceUnavailable
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindInternal
	}
}
