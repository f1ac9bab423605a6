package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Body is the wire form of an Error.
type Body struct {
	Error   Kind   `json:"error"`
	Message string `json:"message"`
}

func (e *Error) Body() Body {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status())
	}
	return Body{Error: e.Kind, Message: msg}
}

// From converts any error into an *Error. Errors that are not already typed
// become KindInternal with a generic message so internals never leak.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return &Error{Kind: KindForStatus(he.Code), Message: fmt.Sprint(he.Message), Err: he.Internal}
	}
	return Wrap(KindInternal, "internal error", err)
}

// HTTPErrorHandler renders errors returned by echo handlers as a Body.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	ae := From(err)
	status := ae.Status()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, ae.Body())
}

// WriteJSON writes an Error to a plain http.ResponseWriter.
func WriteJSON(w http.ResponseWriter, e *Error) {
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	w.WriteHeader(e.Status())
	_ = json.NewEncoder(w).Encode(e.Body())
}

// Decode reads a Body from a non-2xx response. A body that is not an apperr
// Body falls back to a kind derived from the status code.
func Decode(status int, r io.Reader) *Error {
	var b Body
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&b); err != nil || b.Error == "" {
		return New(KindForStatus(status), http.StatusText(status))
	}
	return New(b.Error, b.Message)
}
