// Package convert coerces arbitrary values to the handful of types the
// template interpreter needs. No function in this package fails: every
// conversion has a documented result for values it cannot interpret.
package convert

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// ToString returns the textual form of v. Nil values, including typed nil
// pointers, convert to the empty string.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		if isNil(v) {
			return ""
		}

		return text(x.String)
	case error:
		return text(x.Error)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ""
		}

		rv = rv.Elem()
	}

	return fmt.Sprint(rv.Interface())
}

// text returns the result of fn, or the empty string if fn panics.
func text(fn func() string) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()

	return fn()
}

// falseWords are the strings (compared case-insensitively after trimming)
// that convert to false.
var falseWords = []string{"", "false", "0", "no", "off", "nil", "null"}

// ToBool reports the truthiness of v.
//
// Nil, false, zero numbers, empty collections, and the strings "", "false",
// "0", "no", "off", "nil" and "null" are false. Everything else is true.
func ToBool(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return !slices.Contains(falseWords, strings.ToLower(strings.TrimSpace(x)))
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}

		return ToBool(rv.Elem().Interface())
	case reflect.String:
		return ToBool(rv.String())
	default:
		return true
	}
}

// ToInt converts v to an int, returning def when v is nil or cannot be
// interpreted as a number. Floats are truncated toward zero.
func ToInt(v any, def int) int {
	switch x := v.(type) {
	case nil:
		return def
	case int:
		return x
	case bool:
		if x {
			return 1
		}

		return 0
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.ParseInt(s, 0, 64); err == nil {
			return int(i)
		}

		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}

		return def
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return int(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return int(rv.Float())
	case reflect.String:
		return ToInt(rv.String(), def)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return def
		}

		return ToInt(rv.Elem().Interface(), def)
	default:
		return def
	}
}

// Entry is the element produced by [ToList] for each key of a map.
type Entry struct {
	Key   any `expr:"key"   json:"key"   yaml:"key"`
	Value any `expr:"value" json:"value" yaml:"value"`
}

// ToList converts v to an ordered sequence.
//
// Slices and arrays yield their elements, maps yield one [Entry] per key in
// ascending key order, nil yields nil, and any other value yields a
// single-element list.
func ToList(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		return x
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}

		return out
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return []any{string(rv.Bytes())}
		}

		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}

		return out

	case reflect.Map:
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return cmp.Compare(ToString(a.Interface()), ToString(b.Interface()))
		})

		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = Entry{Key: k.Interface(), Value: rv.MapIndex(k).Interface()}
		}

		return out

	default:
		return []any{rv.Interface()}
	}
}

// IsEmpty reports whether v is nil, a nil pointer, an empty string, or an
// empty slice, array, map or channel.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}

		return IsEmpty(rv.Elem().Interface())
	default:
		return false
	}
}

func isNil(v any) bool {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
