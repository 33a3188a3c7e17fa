package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorKind classifies an SDK error for programmatic branching.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindAuthentication ErrorKind = "authentication"
	KindRateLimit      ErrorKind = "rate_limit"
	KindNotFound       ErrorKind = "not_found"
	KindAPI            ErrorKind = "api"
	KindGeneric        ErrorKind = "generic"
)

// ErrorCode is the machine-readable code carried by an Error. Server-supplied
// codes are passed through verbatim, so the set below is not exhaustive.
type ErrorCode string

// Client-side error codes
const (
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidType        ErrorCode = "INVALID_TYPE"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidResponse    ErrorCode = "INVALID_RESPONSE"
	ErrCodeInvalidJSON        ErrorCode = "INVALID_JSON"
	ErrCodeConnection         ErrorCode = "CONNECTION_ERROR"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeNetwork            ErrorCode = "NETWORK_ERROR"
	ErrCodeCancelled          ErrorCode = "CANCELLED"
)

// Server-side default codes, used when the error envelope carries none.
const (
	ErrCodeInvalidAPIKey     ErrorCode = "INVALID_API_KEY"
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeServerError       ErrorCode = "SERVER_ERROR"
	ErrCodeRequestFailed     ErrorCode = "REQUEST_FAILED"
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrValidation     = errors.New("recallbricks: validation error")
	ErrAuthentication = errors.New("recallbricks: authentication error")
	ErrRateLimit      = errors.New("recallbricks: rate limit exceeded")
	ErrNotFound       = errors.New("recallbricks: not found")
	ErrAPI            = errors.New("recallbricks: api error")
	ErrGeneric        = errors.New("recallbricks: error")
)

var kindSentinels = map[ErrorKind]error{
	KindValidation:     ErrValidation,
	KindAuthentication: ErrAuthentication,
	KindRateLimit:      ErrRateLimit,
	KindNotFound:       ErrNotFound,
	KindAPI:            ErrAPI,
	KindGeneric:        ErrGeneric,
}

// Error is the single error type returned by every facade call.
type Error struct {
	Kind       ErrorKind     `json:"kind"`
	Code       ErrorCode     `json:"code,omitempty"`
	Message    string        `json:"message"`
	Hint       string        `json:"hint,omitempty"`
	RequestID  string        `json:"request_id,omitempty"`
	Field      string        `json:"field,omitempty"`
	HTTPStatus int           `json:"http_status,omitempty"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
	Retryable  bool          `json:"retryable"`
	Cause      error         `json:"-"`
}

// Error renders the message followed by the hint and request id when present.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Hint != "" {
		b.WriteString(" (hint: ")
		b.WriteString(e.Hint)
		b.WriteString(")")
	}
	if e.RequestID != "" {
		b.WriteString(" [request_id: ")
		b.WriteString(e.RequestID)
		b.WriteString("]")
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// NewError creates a new Error with the given kind and message.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithCode sets the error code.
func (e *Error) WithCode(code ErrorCode) *Error {
	e.Code = code
	return e
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithHint sets the server-provided hint.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithRequestID sets the request identifier used for tracing.
func (e *Error) WithRequestID(id string) *Error {
	e.RequestID = id
	return e
}

// WithRetryAfter attaches the server-supplied retry delay.
func (e *Error) WithRetryAfter(d time.Duration) *Error {
	e.RetryAfter = d
	return e
}

// WithField names the offending parameter or response key.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// NewValidationError creates a validation error for the named field.
func NewValidationError(field, message string) *Error {
	return NewError(KindValidation, message).WithCode(ErrCodeValidation).WithField(field)
}

// NewTypeError creates a validation error for a value of the wrong kind.
func NewTypeError(field, expected string, got any) *Error {
	return NewError(KindValidation, fmt.Sprintf("%s must be %s, got %s", field, expected, TypeName(got))).
		WithCode(ErrCodeInvalidType).
		WithField(field)
}

// NewInvalidResponseError creates an API error for a malformed response body.
func NewInvalidResponseError(message string) *Error {
	return NewError(KindAPI, message).WithCode(ErrCodeInvalidResponse)
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// IsTypeError reports whether err is a validation error caused by a value of
// the wrong kind (for example a bool where an integer is expected).
func IsTypeError(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Kind == KindValidation && e.Code == ErrCodeInvalidType
	}
	return false
}

// GetErrorKind extracts the error kind from an error.
func GetErrorKind(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ""
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// TypeName describes the dynamic kind of v in the vocabulary of JSON.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "string"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case float32, float64:
		return "float"
	case []any, []string, []int, []float64, []map[string]any:
		return "list"
	case map[string]any, map[string]string:
		return "dict"
	default:
		return fmt.Sprintf("%T", v)
	}
}
