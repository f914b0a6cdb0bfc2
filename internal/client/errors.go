package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthenticated matches any APIError carrying HTTP 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets errors.Is(err, ErrUnauthenticated) recognise 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthenticated && e.StatusCode == http.StatusUnauthorized
}

// TransportError wraps failures where no HTTP response was received:
// unreachable host, refused connection, timeout.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the request hit the per-request deadline.
func (e *TransportError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// Kind groups errors by how the UI reacts to them.
type Kind int

const (
	KindNone Kind = iota
	// KindTransport: the backend could not be reached.
	KindTransport
	// KindUnauthenticated: the session is invalid and must end.
	KindUnauthenticated
	// KindRejected: any other failure, including validation errors.
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransport:
		return "transport"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "rejected"
	}
}

func Classify(err error) Kind {
	var transport *TransportError
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &transport):
		return KindTransport
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	default:
		return KindRejected
	}
}

const (
	MessageNoConnection = "No connection to the server. Android emulator: use 10.0.2.2, iOS simulator: localhost, physical device: your machine's IP."
	MessageRejected     = "Invalid credentials or server unavailable."
)

// UserMessage collapses err into the text shown to the user. Every failure
// that reached the server gets the same message on purpose.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindNone:
		return ""
	case KindTransport:
		return MessageNoConnection
	default:
		return MessageRejected
	}
}
