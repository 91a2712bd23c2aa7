package configuration

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// Optional is a generic container for optional configuration values.
type Optional[T any] struct {
	// Value holds the actual as unmarshalled.
	Value T `json:"value"`
	// Present indicates if the value was present in the configuration.
	Present bool `json:"present"`
}

// Some creates an Optional that is present and holds the given value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{Value: value, Present: true}
}

// Get returns the value, which is the zero value of T if it is not set.
func (o *Optional[T]) Get() T {
	return o.Value
}

// IsSet returns true if the value was present in the configuration.
func (o *Optional[T]) IsSet() bool {
	return o.Present
}

// Ptr returns a pointer to a copy of the value, or nil if it is not set.
func (o *Optional[T]) Ptr() *T {
	if !o.IsSet() {
		return nil
	}
	value := o.Value
	return &value
}

// DefaultTrueBool is a boolean type that defaults to true if not present.
type DefaultTrueBool struct {
	Optional[bool]
}

// Get returns the boolean value, defaulting to true if not present.
func (b *DefaultTrueBool) Get() bool {
	if !b.Present {
		return true
	}
	return b.Value
}

// OptionalFloatHookFunc returns a mapstructure decode hook function for Optional[float64].
func OptionalFloatHookFunc() mapstructure.DecodeHookFuncType {
	optionalType := reflect.TypeOf(Optional[float64]{})

	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{}) (interface{}, error) {

		if t != optionalType {
			return data, nil
		}

		value, err := anyToFloat(data)
		if err != nil {
			// leave maps (e.g. an already decoded Optional) to mapstructure
			return data, nil
		}

		return Some(value), nil
	}
}

// DefaultTrueBoolHookFunc returns a mapstructure decode hook function for DefaultTrueBool.
func DefaultTrueBoolHookFunc() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{}) (interface{}, error) {

		// Only target our specific named type
		if t != reflect.TypeOf(DefaultTrueBool{}) {
			return data, nil
		}

		var val bool
		switch v := data.(type) {
		case bool:
			val = v
		case string:
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return data, nil
			}
			val = parsed
		default:
			return data, nil
		}

		// Return the specific type with the inner Optional initialized
		return DefaultTrueBool{
			Optional: Some(val),
		}, nil
	}
}

// anyToFloat converts numeric and string values to float64.
func anyToFloat(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case string:
		return strconv.ParseFloat(val, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float", v)
	}
}
