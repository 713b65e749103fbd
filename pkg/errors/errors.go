package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Network errors
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeTimeout ErrorType = "timeout"
	ErrorTypeHTTP    ErrorType = "http"

	// Authentication errors
	ErrorTypeUnauthorized   ErrorType = "unauthorized"
	ErrorTypeForbidden      ErrorType = "forbidden"
	ErrorTypeSessionExpired ErrorType = "session_expired"
	ErrorTypeNotLoggedIn    ErrorType = "not_logged_in"

	// Validation errors
	ErrorTypeValidation ErrorType = "validation"

	// Server errors
	ErrorTypeServer    ErrorType = "server"
	ErrorTypeNotFound  ErrorType = "not_found"
	ErrorTypeConflict  ErrorType = "conflict"
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// Unknown errors
	ErrorTypeUnknown ErrorType = "unknown"
)

// GenericNetworkMessage replaces transport error text shown to the user.
const GenericNetworkMessage = "Network error. Please try again."

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
	Fields     []FieldError
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NetworkError wraps a transport failure. The cause is kept for logs; the
// message shown to the user is always the generic one.
func NetworkError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeNetwork, GenericNetworkMessage, cause)
	err.Suggestion = "Check your connection and the configured api.base_url, then try again."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeTimeout, "Request timed out", cause)
	err.Suggestion = "The server is taking too long to respond. Try again in a moment."
	return err
}

// NotLoggedInError is returned before any request that needs a bearer token.
func NotLoggedInError() *CLIError {
	err := NewCLIError(ErrorTypeNotLoggedIn, "You must be logged in to do that", nil)
	err.Suggestion = "Run 'blogdeck auth login' first."
	return err
}

// SessionExpiredError creates a session expired error
func SessionExpiredError(message string) *CLIError {
	if message == "" {
		message = "Your session has expired"
	}
	err := NewCLIError(ErrorTypeSessionExpired, message, nil)
	err.StatusCode = http.StatusUnauthorized
	err.Suggestion = "Run 'blogdeck auth login' to start a new session."
	return err
}

// ForbiddenError creates a forbidden error
func ForbiddenError(message string) *CLIError {
	if message == "" {
		message = "Access denied"
	}
	err := NewCLIError(ErrorTypeForbidden, message, nil)
	err.StatusCode = http.StatusForbidden
	return err
}

// ValidationError creates a validation error for a single field
func ValidationError(field, reason string) *CLIError {
	err := NewCLIError(ErrorTypeValidation, reason, nil)
	err.Fields = []FieldError{{Field: field, Message: reason}}
	return err
}

// ValidationErrors folds several field failures into one error whose message
// is the first failure.
func ValidationErrors(fields []FieldError) *CLIError {
	if len(fields) == 0 {
		return nil
	}
	err := NewCLIError(ErrorTypeValidation, fields[0].Message, nil)
	err.Fields = fields
	return err
}

// NotFoundError creates a not found error
func NotFoundError(resourceType, identifier string) *CLIError {
	err := NewCLIError(ErrorTypeNotFound,
		fmt.Sprintf("%s not found: %s", resourceType, identifier),
		nil)
	err.StatusCode = http.StatusNotFound
	return err
}

// FromStatus builds the error for a non-success HTTP response. The server
// message is passed through verbatim; fallback is used only when it is empty.
func FromStatus(statusCode int, message, fallback string, fields []FieldError) *CLIError {
	if message == "" {
		message = fallback
	}

	var errType ErrorType
	switch {
	case statusCode == http.StatusBadRequest || statusCode == http.StatusUnprocessableEntity:
		errType = ErrorTypeValidation
	case statusCode == http.StatusUnauthorized:
		errType = ErrorTypeUnauthorized
	case statusCode == http.StatusForbidden:
		errType = ErrorTypeForbidden
	case statusCode == http.StatusNotFound:
		errType = ErrorTypeNotFound
	case statusCode == http.StatusConflict:
		errType = ErrorTypeConflict
	case statusCode == http.StatusTooManyRequests:
		errType = ErrorTypeRateLimit
	case statusCode >= 500:
		errType = ErrorTypeServer
	default:
		errType = ErrorTypeHTTP
	}

	err := NewCLIError(errType, message, nil)
	err.StatusCode = statusCode
	err.Fields = fields

	switch errType {
	case ErrorTypeUnauthorized:
		err.Suggestion = "Run 'blogdeck auth login' to start a new session."
	case ErrorTypeServer:
		err.Suggestion = "The server encountered an error. Try again in a few moments."
	case ErrorTypeRateLimit:
		err.Suggestion = "Too many requests. Wait a little before trying again."
	}
	return err
}

// FromTransport classifies an error returned by the HTTP client itself.
func FromTransport(err error) *CLIError {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TimeoutError(err)
	}
	return NetworkError(err)
}

// Is reports whether err is a CLIError of the given type.
func Is(err error, errorType ErrorType) bool {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Type == errorType
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.StatusCode
	}
	return 0
}

// IsUnauthorized checks if error is due to missing/invalid authentication
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsNotFound checks if error is due to resource not found
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound || Is(err, ErrorTypeNotFound)
}

// Message returns the single user-facing message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return CategorizeError(err).Message
}

// Outcome flattens err into the success flag and message every store and
// session operation reports.
func Outcome(err error) (bool, string) {
	if err == nil {
		return true, ""
	}
	return false, Message(err)
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "connection refused"),
		strings.Contains(errMsg, "no such host"):
		return NetworkError(err)
	case strings.Contains(errMsg, "timeout"),
		strings.Contains(errMsg, "context deadline exceeded"):
		return TimeoutError(err)
	default:
		return NewCLIError(ErrorTypeUnknown, errMsg, err)
	}
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	for _, f := range cliErr.Fields {
		if f.Message == cliErr.Message {
			continue
		}
		sb.WriteString("  - ")
		if f.Field != "" {
			sb.WriteString(f.Field)
			sb.WriteString(": ")
		}
		sb.WriteString(f.Message)
		sb.WriteString("\n")
	}

	if cliErr.HasSuggestion() {
		sb.WriteString("\nSuggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}
