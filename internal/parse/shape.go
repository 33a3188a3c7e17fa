// Package parse validates the shape of decoded API responses and converts
// them into typed values.
package parse

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/BaSui01/recallbricks/types"
)

// Kind is the JSON kind a required key must carry.
type Kind int

const (
	Any Kind = iota
	String
	Number
	Bool
	Object
	Array
	Null
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Object:
		return "object"
	case Array:
		return "array"
	case Null:
		return "null"
	default:
		return "any"
	}
}

// Field is a required top-level key.
type Field struct {
	Key  string
	Kind Kind
}

// Shape describes the expected top-level container and its required keys.
// Required is only consulted for object containers.
type Shape struct {
	Container Kind
	Required  []Field
}

// ObjectShape expects a JSON object carrying the given keys.
func ObjectShape(required ...Field) Shape {
	return Shape{Container: Object, Required: required}
}

// ArrayShape expects a JSON array.
func ArrayShape() Shape {
	return Shape{Container: Array}
}

// Key is shorthand for a Field.
func Key(key string, kind Kind) Field {
	return Field{Key: key, Kind: kind}
}

// Check verifies body against shape and returns the parsed root.
func Check(body []byte, shape Shape) (gjson.Result, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return gjson.Result{}, types.NewInvalidResponseError("response body is empty")
	}
	if !gjson.ValidBytes(trimmed) {
		return gjson.Result{}, types.NewError(types.KindGeneric, "response is not valid JSON").
			WithCode(types.ErrCodeInvalidJSON)
	}

	root := gjson.ParseBytes(trimmed)
	got := kindOf(root)
	if got != shape.Container {
		if root.Type == gjson.Null {
			return gjson.Result{}, types.NewInvalidResponseError("response body is null")
		}
		return gjson.Result{}, types.NewInvalidResponseError(
			fmt.Sprintf("response must be a JSON %s, got %s", shape.Container, got))
	}
	if shape.Container != Object {
		return root, nil
	}

	fields := root.Map()
	for _, f := range shape.Required {
		v, ok := fields[f.Key]
		if !ok {
			return gjson.Result{}, types.NewInvalidResponseError(
				fmt.Sprintf("response missing required key %q", f.Key)).WithField(f.Key)
		}
		if f.Kind != Any && kindOf(v) != f.Kind {
			return gjson.Result{}, types.NewInvalidResponseError(
				fmt.Sprintf("response key %q must be %s, got %s", f.Key, f.Kind, kindOf(v))).WithField(f.Key)
		}
	}
	return root, nil
}

func kindOf(r gjson.Result) Kind {
	switch r.Type {
	case gjson.String:
		return String
	case gjson.Number:
		return Number
	case gjson.True, gjson.False:
		return Bool
	case gjson.JSON:
		if r.IsArray() {
			return Array
		}
		return Object
	case gjson.Null:
		return Null
	default:
		return Any
	}
}

// Decode checks body against shape and unmarshals it into T.
func Decode[T any](body []byte, shape Shape) (T, error) {
	var out T
	root, err := Check(body, shape)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(root.Raw), &out); err != nil {
		return out, types.NewInvalidResponseError(fmt.Sprintf("response does not match expected type: %v", err)).
			WithCause(err)
	}
	return out, nil
}

// DecodeKey checks body against shape, which must require key, and
// unmarshals the value under key into T.
func DecodeKey[T any](body []byte, shape Shape, key string) (T, error) {
	var out T
	root, err := Check(body, shape)
	if err != nil {
		return out, err
	}
	raw := root.Map()[key].Raw
	if raw == "" {
		return out, types.NewInvalidResponseError(fmt.Sprintf("response missing required key %q", key)).WithField(key)
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, types.NewInvalidResponseError(fmt.Sprintf("response key %q does not match expected type: %v", key, err)).
			WithField(key).
			WithCause(err)
	}
	return out, nil
}

// Map checks body against an object shape and returns it as a JSONMap.
func Map(body []byte, required ...Field) (types.JSONMap, error) {
	return Decode[types.JSONMap](body, ObjectShape(required...))
}
