package hycu

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies API-layer failures.
type ErrorKind string

const (
	KindAuth       ErrorKind = "auth"
	KindNotFound   ErrorKind = "not_found"
	KindServer     ErrorKind = "server"
	KindHTTP       ErrorKind = "http"
	KindConnection ErrorKind = "connection"
	KindTimeout    ErrorKind = "timeout"
	KindParse      ErrorKind = "parse"
	KindRequest    ErrorKind = "request"
)

// APIError is implemented by every error raised while talking to the
// HYCU controller.
type APIError interface {
	error
	Kind() ErrorKind
}

// IsAPIError reports whether err (or anything it wraps) is an APIError.
func IsAPIError(err error) bool {
	var apiErr APIError
	return errors.As(err, &apiErr)
}

// AuthError is returned for 401 and 403 responses.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	if e.Status == http.StatusForbidden {
		return "Access forbidden. Check API token permissions."
	}
	return "Authentication failed. Check your API token."
}

func (e *AuthError) Kind() ErrorKind { return KindAuth }

// NotFoundError is returned for 404 responses and for names the resolver
// could not match. Name is empty in the 404 case.
type NotFoundError struct {
	Label     string
	Plural    string
	Name      string
	Available []string
	// Truncated is set when the searched listing held more than one page.
	Truncated bool
}

func (e *NotFoundError) Error() string {
	if !e.Unresolved() {
		return "Resource not found."
	}
	return fmt.Sprintf("%s '%s' does not exist", e.Label, e.Name)
}

func (e *NotFoundError) Kind() ErrorKind { return KindNotFound }

// Unresolved reports whether the error came from name resolution rather
// than from the server.
func (e *NotFoundError) Unresolved() bool {
	return e.Name != ""
}

// ServerError is returned for 5xx responses.
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("HYCU server error: %d", e.Status)
}

func (e *ServerError) Kind() ErrorKind { return KindServer }

// HTTPError is returned for any other non-2xx response.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

func (e *HTTPError) Kind() ErrorKind { return KindHTTP }

// TimeoutError is returned when a request exceeds the configured timeout.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Request timeout after %d seconds", int(e.Timeout.Seconds()))
}

func (e *TimeoutError) Kind() ErrorKind { return KindTimeout }

// ConnectionError is returned when the controller cannot be reached.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "Connection error. Check host address and network."
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Kind() ErrorKind { return KindConnection }

// ParseError is returned when a 2xx body is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "Invalid JSON response from API"
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Kind() ErrorKind { return KindParse }

// RequestError covers transport failures that are neither timeouts nor
// connection failures.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("Request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Kind() ErrorKind { return KindRequest }
