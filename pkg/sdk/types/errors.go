package types

import "fmt"

// ErrorCode groups SDK errors into broad classes.
type ErrorCode string

const (
	ErrCodeNotConfigured ErrorCode = "not_configured"
	ErrCodeBadInput      ErrorCode = "bad_input"
	ErrCodeHTTP          ErrorCode = "http"
	ErrCodeStream        ErrorCode = "stream"
	ErrCodeSigning       ErrorCode = "signing"
	ErrCodeTimeout       ErrorCode = "timeout"
)

// Error is the SDK error type. Cause, when set, preserves the underlying
// error for errors.Is/As chains.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds an Error with a formatted message.
func NewError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a cause to a new Error.
func WrapError(cause error, code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// HTTPError is a non-2xx response from a REST endpoint. Vendor errors
// (CLOB, relayer) pass through untranslated in Body.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
	Endpoint   string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("http %d on %s: %s", e.StatusCode, e.Endpoint, e.Body)
	}
	return fmt.Sprintf("http %d on %s", e.StatusCode, e.Endpoint)
}

// IsRetryable reports whether the status indicates a transient condition.
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
