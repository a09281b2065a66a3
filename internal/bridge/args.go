package bridge

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/Iron-Ham/callbridge/internal/errors"
)

// Args is the untyped argument bag of a command.
type Args map[string]any

// Int64 returns the integer argument key. JSON numbers, native integer
// types and integral floats are accepted; anything else, including an
// absent or null value, is a *errors.ValidationError.
func (a Args) Int64(key string) (int64, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return 0, required(key)
	}

	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, invalid(key, v, "is out of range")
		}
		return int64(n), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, invalid(key, v, "must be an integer")
		}
		return integral(key, f)
	case float64:
		return integral(key, n)
	case float32:
		return integral(key, float64(n))
	default:
		return 0, invalid(key, v, "must be an integer")
	}
}

// NonNegativeInt64 is Int64 restricted to values >= 0.
func (a Args) NonNegativeInt64(key string) (int64, error) {
	n, err := a.Int64(key)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, invalid(key, n, "must be a non-negative integer")
	}
	return n, nil
}

// String returns the string argument key. An empty string is a valid value.
func (a Args) String(key string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", required(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", invalid(key, v, "must be a string")
	}
	return s, nil
}

func integral(key string, f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, invalid(key, f, "must be an integer")
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, invalid(key, f, "is out of range")
	}
	return int64(f), nil
}

func required(key string) error {
	return errors.NewValidationError(fmt.Sprintf("%s is required", key)).WithField(key)
}

func invalid(key string, value any, reason string) error {
	return errors.NewValidationError(fmt.Sprintf("%s %s", key, reason)).WithField(key).WithValue(value)
}
