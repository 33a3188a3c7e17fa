// Package validate checks caller arguments before any network call is made.
//
// Every check takes its value as any so that values of the wrong dynamic kind
// (a bool where an integer is expected, a number where a string is expected)
// are rejected explicitly instead of being coerced.
package validate

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/BaSui01/recallbricks/types"
)

// MaxGraphDepth bounds relationship graph traversal depth.
const MaxGraphDepth = 50

// Identifier requires v to be a non-empty string after trimming.
func Identifier(field string, v any) error {
	if v == nil {
		return types.NewValidationError(field, field+" cannot be empty")
	}
	s, ok := v.(string)
	if !ok {
		return types.NewTypeError(field, "a string", v)
	}
	if strings.TrimSpace(s) == "" {
		return types.NewValidationError(field, field+" cannot be empty")
	}
	return nil
}

// NonEmpty requires s to be non-empty after trimming.
func NonEmpty(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return types.NewValidationError(field, field+" cannot be empty")
	}
	return nil
}

// NonNegativeInt requires v to be an integral number that is zero or greater.
// Booleans are rejected before the integer check.
func NonNegativeInt(field string, v any) (int, error) {
	n, err := Int(field, v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, types.NewValidationError(field, fmt.Sprintf("%s must be non-negative, got %d", field, n))
	}
	return n, nil
}

// Int converts v to an int, rejecting bools, non-integral floats and every
// non-numeric kind.
func Int(field string, v any) (int, error) {
	if _, isBool := v.(bool); isBool {
		return 0, types.NewTypeError(field, "an integer", v)
	}
	if v == nil {
		return 0, types.NewTypeError(field, "an integer", v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt {
			return 0, types.NewValidationError(field, fmt.Sprintf("%s is out of range", field))
		}
		return int(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, types.NewTypeError(field, "an integer", v)
		}
		return int(f), nil
	default:
		return 0, types.NewTypeError(field, "an integer", v)
	}
}

// Depth validates a graph traversal depth: an integer in [0, MaxGraphDepth].
func Depth(v any) (int, error) {
	n, err := NonNegativeInt("depth", v)
	if err != nil {
		return 0, err
	}
	if n > MaxGraphDepth {
		return 0, types.NewValidationError("depth", fmt.Sprintf("depth must be at most %d, got %d", MaxGraphDepth, n))
	}
	return n, nil
}

// OneOf requires v to be one of allowed.
func OneOf(field, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return types.NewValidationError(field,
		fmt.Sprintf("%s must be one of: %s, got %q", field, strings.Join(allowed, ", "), v))
}

// IntRange requires min <= v <= max.
func IntRange(field string, v, min, max int) error {
	if v < min || v > max {
		return types.NewValidationError(field, fmt.Sprintf("%s must be between %d and %d, got %d", field, min, max, v))
	}
	return nil
}

// FloatRange requires min <= v <= max.
func FloatRange(field string, v, min, max float64) error {
	if math.IsNaN(v) || v < min || v > max {
		return types.NewValidationError(field, fmt.Sprintf("%s must be between %g and %g, got %g", field, min, max, v))
	}
	return nil
}

// RequiredWith requires v to be non-empty when cond holds. reason names the
// condition in the error message.
func RequiredWith(field, v string, cond bool, reason string) error {
	if cond && strings.TrimSpace(v) == "" {
		return types.NewValidationError(field, fmt.Sprintf("%s is required when %s", field, reason))
	}
	return nil
}

// UserID enforces the subject identifier required under service-token auth.
func UserID(userID string, serviceToken bool) error {
	return RequiredWith("user_id", userID, serviceToken, "using service_token authentication")
}

// StringSlice requires every element to be a non-empty string.
func StringSlice(field string, v []string) error {
	for i, s := range v {
		if strings.TrimSpace(s) == "" {
			return types.NewValidationError(field, fmt.Sprintf("%s[%d] cannot be empty", field, i))
		}
	}
	return nil
}

// NotEmptySlice requires v to hold at least one element.
func NotEmptySlice[T any](field string, v []T) error {
	if len(v) == 0 {
		return types.NewValidationError(field, field+" cannot be empty")
	}
	return nil
}

// Clamp limits v to [min, max].
func Clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}
