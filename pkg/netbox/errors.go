package netbox

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired   = errors.New("config is required")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrUnknownEndpoint  = errors.New("unknown endpoint")
	ErrNotDiscovered    = errors.New("endpoints not discovered, call Discover first")
	ErrNoPaths          = errors.New("openapi document has no paths mapping")
	ErrAllocation       = errors.New("request allocation error")
	ErrNotSingleRequest = errors.New("request must contain exactly one verb with one payload")
	ErrNotJSONObject    = errors.New("response body is not a JSON object")
	ErrMissingIDField   = errors.New("resource has no id field")
	ErrClientClosed     = errors.New("client is closed")
	ErrTokenExpired     = errors.New("API token has expired")
)

// ParameterError reports a GET request against an id-addressed path whose
// parameters carry no id.
type ParameterError struct {
	Message string
}

// Error implements the error interface.
func (e *ParameterError) Error() string {
	return "Passing Parameters error for GET method. " + e.Message
}

// DataError reports a mutating request against an id-addressed path whose
// payload carries no id.
type DataError struct {
	Message string
	Verb    Verb
}

// Error implements the error interface.
func (e *DataError) Error() string {
	return fmt.Sprintf("Passing Data error for %s method. %s", strings.ToUpper(string(e.Verb)), e.Message)
}

// ValidationError reports a request descriptor that uses a verb outside the
// set allowed for its context.
type ValidationError struct {
	Verb    Verb
	Allowed []Verb
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	quoted := make([]string, 0, len(e.Allowed))
	for _, verb := range e.Allowed {
		quoted = append(quoted, "'"+string(verb)+"'")
	}

	return fmt.Sprintf("invalid request verb %q. Available arguments: %s", e.Verb, strings.Join(quoted, ", "))
}

// StatusError is returned for every non-2xx response.
type StatusError struct {
	StatusCode   int
	Reason       string
	Method       string
	URL          string
	RequestBody  string
	ResponseBody string
	Location     string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("%s '%d %s' for url '%s'\nRedirect location: '%s'",
			statusClassName(e.StatusCode), e.StatusCode, e.Reason, e.URL, e.Location)
	}

	return fmt.Sprintf("%s '%d %s' for url '%s' and '%s' method.\nRequest parameters:\n%s\nResponse:\n%s\n",
		statusClassName(e.StatusCode), e.StatusCode, e.Reason, e.URL, e.Method, e.RequestBody, e.ResponseBody)
}

func statusClassName(code int) string {
	switch code / 100 {
	case 1:
		return "Informational response"
	case 3:
		return "Redirect response"
	case 4:
		return "Client error"
	case 5:
		return "Server error"
	default:
		return "Invalid status code"
	}
}

// DecodingError is returned when a body that must be JSON is not.
type DecodingError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *DecodingError) Error() string {
	msg := "The server returned non json data"
	if e.URL != "" {
		msg += fmt.Sprintf(" (%s %s, status %d)", e.Method, e.URL, e.StatusCode)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying parse error.
func (e *DecodingError) Unwrap() error {
	return e.Err
}

// TransportError wraps failures that happen below the HTTP status layer:
// connection errors and creation requests answered with No Content.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// MissingAttributeError is returned when a field that was never materialized
// is read.
type MissingAttributeError struct {
	Resource  string
	Attribute string
}

// Error implements the error interface.
func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("'%s' object has no attribute '%s'", e.Resource, e.Attribute)
}

// IsStatus checks if the error is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	statusErr := &StatusError{}
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == code
	}

	return false
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsValidation checks if the error was raised before any network call
// because the request descriptor was malformed.
func IsValidation(err error) bool {
	var (
		validationErr *ValidationError
		paramErr      *ParameterError
		dataErr       *DataError
	)

	return errors.As(err, &validationErr) || errors.As(err, &paramErr) || errors.As(err, &dataErr)
}
