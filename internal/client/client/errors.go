package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable marks transport failures where no response arrived.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized marks 401/403 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrServer marks every other non-2xx response and undecodable bodies.
	ErrServer = errors.New("server error")
)

// ResponseError is a non-2xx answer from the Identity Service. It matches
// ErrUnauthorized for 401/403 and ErrServer otherwise under errors.Is.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("identity service: status %d", e.Status)
	}
	return fmt.Sprintf("identity service: status %d: %s", e.Status, e.Message)
}

func (e *ResponseError) Unwrap() error {
	if isAuthStatus(e.Status) {
		return ErrUnauthorized
	}
	return ErrServer
}

// Message returns the server-supplied message carried by err, if any.
func Message(err error) string {
	var re *ResponseError
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}

func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
