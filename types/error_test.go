package types

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(KindAPI, "upstream failed").
		WithCode(ErrCodeServerError).
		WithCause(root).
		WithHTTPStatus(502).
		WithRetryable(true).
		WithRequestID("req-1")

	if GetErrorCode(err) != ErrCodeServerError {
		t.Fatalf("expected code %s, got %s", ErrCodeServerError, GetErrorCode(err))
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("expected errors.Is to match kind sentinel")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("unexpected match on a different kind")
	}
}

func TestError_StringIncludesHintAndRequestID(t *testing.T) {
	t.Parallel()

	err := NewError(KindAuthentication, "Invalid API key").
		WithCode(ErrCodeInvalidAPIKey).
		WithHint("Check your key format").
		WithRequestID("req-123")

	s := err.Error()
	assert.Contains(t, s, "Invalid API key")
	assert.Contains(t, s, "Check your key format")
	assert.Contains(t, s, "req-123")
}

func TestError_StringWithoutOptionalFields(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Simple error", NewError(KindGeneric, "Simple error").Error())
}

func TestAsError_ThroughWrapping(t *testing.T) {
	t.Parallel()

	inner := NewError(KindRateLimit, "slow down").WithRetryAfter(30 * time.Second)
	wrapped := fmt.Errorf("learn: %w", inner)

	e, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, e.RetryAfter)
	assert.Equal(t, KindRateLimit, GetErrorKind(wrapped))
	assert.True(t, errors.Is(wrapped, ErrRateLimit))
}

func TestNewTypeError(t *testing.T) {
	t.Parallel()

	err := NewTypeError("depth", "an integer", true)
	assert.True(t, IsTypeError(err))
	assert.Equal(t, "depth", err.Field)
	assert.Equal(t, "depth must be an integer, got bool", err.Message)
	assert.True(t, errors.Is(err, ErrValidation))

	assert.False(t, IsTypeError(NewValidationError("depth", "depth must be non-negative, got -1")))
	assert.False(t, IsTypeError(errors.New("plain")))
}

func TestTypeName(t *testing.T) {
	t.Parallel()

	cases := map[string]any{
		"null":   nil,
		"bool":   false,
		"string": "x",
		"int":    int64(3),
		"float":  1.5,
		"list":   []any{1},
		"dict":   map[string]any{},
	}
	for want, v := range cases {
		assert.Equal(t, want, TypeName(v))
	}
}
