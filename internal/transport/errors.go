package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/tidwall/gjson"

	"github.com/BaSui01/recallbricks/types"
)

// envelope is the server's error body, either nested under "error" or flat.
type envelope struct {
	code      string
	message   string
	hint      string
	requestID string
}

func parseEnvelope(body []byte) envelope {
	if !gjson.ValidBytes(body) {
		return envelope{}
	}
	root := gjson.ParseBytes(body)
	nested := root.Get("error")
	if nested.IsObject() {
		return envelope{
			code:      nested.Get("code").String(),
			message:   nested.Get("message").String(),
			hint:      nested.Get("hint").String(),
			requestID: nested.Get("requestId").String(),
		}
	}

	env := envelope{
		code:      root.Get("code").String(),
		message:   root.Get("message").String(),
		hint:      root.Get("hint").String(),
		requestID: root.Get("requestId").String(),
	}
	if env.message == "" && nested.Type == gjson.String {
		env.message = nested.String()
	}
	return env
}

// statusError maps a non-2xx response to a typed error.
func statusError(status int, header http.Header, body []byte) *types.Error {
	env := parseEnvelope(body)

	message := env.message
	if message == "" {
		message = http.StatusText(status)
		if message == "" {
			message = "API request failed"
		}
	}

	var e *types.Error
	switch {
	case status == http.StatusBadRequest:
		e = types.NewError(types.KindValidation, message).WithCode(types.ErrCodeValidation)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e = types.NewError(types.KindAuthentication, message).WithCode(types.ErrCodeInvalidAPIKey)
	case status == http.StatusNotFound:
		e = types.NewError(types.KindNotFound, message).WithCode(types.ErrCodeNotFound)
	case status == http.StatusTooManyRequests:
		e = types.NewError(types.KindRateLimit, message).
			WithCode(types.ErrCodeRateLimitExceeded).
			WithRetryable(true).
			WithRetryAfter(retryAfter(header, time.Now()))
	case status >= 500:
		e = types.NewError(types.KindAPI, message).WithCode(types.ErrCodeServerError).WithRetryable(true)
	default:
		e = types.NewError(types.KindAPI, message).WithCode(types.ErrCodeRequestFailed)
	}

	if env.code != "" {
		e.Code = types.ErrorCode(env.code)
	}
	e.Hint = env.hint
	e.RequestID = env.requestID
	if e.RequestID == "" {
		e.RequestID = header.Get(HeaderRequestID)
	}
	return e.WithHTTPStatus(status)
}

// retryAfter reads Retry-After, then X-RateLimit-Reset. Both are taken as
// delta seconds; Retry-After may also be an HTTP date, and a reset value that
// looks like a unix timestamp is converted to a delta.
func retryAfter(h http.Header, now time.Time) time.Duration {
	if v := strings.TrimSpace(h.Get("Retry-After")); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 {
			return time.Duration(secs * float64(time.Second))
		}
		if t, err := http.ParseTime(v); err == nil {
			return max(0, t.Sub(now))
		}
	}
	if v := strings.TrimSpace(h.Get("X-RateLimit-Reset")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			if n > 1_000_000_000 {
				return max(0, time.Unix(n, 0).Sub(now))
			}
			return time.Duration(n) * time.Second
		}
	}
	return 0
}

// transportError classifies a failure that produced no HTTP response.
// parent is the caller's context; attempt is the per-attempt child.
func transportError(parent, attempt context.Context, err error) *types.Error {
	if parent.Err() != nil {
		if errors.Is(parent.Err(), context.DeadlineExceeded) {
			return types.NewError(types.KindGeneric, "request deadline exceeded").
				WithCode(types.ErrCodeTimeout).
				WithCause(err)
		}
		return types.NewError(types.KindGeneric, "request cancelled").
			WithCode(types.ErrCodeCancelled).
			WithCause(err)
	}
	if errors.Is(attempt.Err(), context.DeadlineExceeded) || isTimeout(err) {
		return types.NewError(types.KindGeneric, "request timed out").
			WithCode(types.ErrCodeTimeout).
			WithRetryable(true).
			WithCause(err)
	}
	if isConnectionError(err) {
		return types.NewError(types.KindGeneric, "connection error: "+err.Error()).
			WithCode(types.ErrCodeConnection).
			WithRetryable(true).
			WithCause(err)
	}
	return types.NewError(types.KindGeneric, "network error: "+err.Error()).
		WithCode(types.ErrCodeNetwork).
		WithCause(err)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &opErr), errors.As(err, &dnsErr):
		return true
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	return false
}
