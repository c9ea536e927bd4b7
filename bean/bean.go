// Package bean writes values into arbitrary Go data structures addressed by
// a property path.
//
// A path is a sequence of segments separated by dots, where any segment may
// be followed by bracketed indices:
//
//	name
//	user.address.city
//	items[2].price
//	matrix[1][0]
//	labels["app.kubernetes.io/name"]
//
// Segments address map keys, struct fields (matched exactly, then without
// regard to case) and slice or array elements.
package bean

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/ardnew/stencil/convert"
)

// Set assigns value at path inside target and reports whether the write
// happened. It is a no-op returning false for a nil target, an empty or
// malformed path, a missing intermediate element, or a destination that is
// not settable (e.g. a struct passed by value).
func Set(target any, path string, value any) bool {
	if target == nil {
		return false
	}

	segs, ok := parsePath(path)
	if !ok || len(segs) == 0 {
		return false
	}

	cur := reflect.ValueOf(target)

	for _, seg := range segs[:len(segs)-1] {
		cur, ok = child(cur, seg)
		if !ok {
			return false
		}
	}

	return assign(cur, segs[len(segs)-1], value)
}

// Get returns the value at path inside target.
func Get(target any, path string) (any, bool) {
	if target == nil {
		return nil, false
	}

	segs, ok := parsePath(path)
	if !ok {
		return nil, false
	}

	cur := reflect.ValueOf(target)

	for _, seg := range segs {
		cur, ok = child(cur, seg)
		if !ok {
			return nil, false
		}
	}

	if !cur.IsValid() || !cur.CanInterface() {
		return nil, false
	}

	return cur.Interface(), true
}

// segment is one step of a property path: a key or name, or an index.
type segment struct {
	key     string
	index   int
	isIndex bool
}

// parsePath splits a property path into segments.
func parsePath(path string) ([]segment, bool) {
	var segs []segment

	path = strings.TrimSpace(path)

	for i := 0; i < len(path); {
		switch path[i] {
		case '.':
			i++

		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, false
			}

			inner := strings.TrimSpace(path[i+1 : i+end])
			i += end + 1

			if unq, err := strconv.Unquote(inner); err == nil {
				segs = append(segs, segment{key: unq})

				continue
			}

			n, err := strconv.Atoi(inner)
			if err != nil {
				return nil, false
			}

			segs = append(segs, segment{key: inner, index: n, isIndex: true})

		default:
			end := strings.IndexAny(path[i:], ".[")
			if end < 0 {
				end = len(path) - i
			}

			segs = append(segs, segment{key: path[i : i+end]})
			i += end
		}
	}

	return segs, true
}

// indirect follows pointers and interfaces to a concrete value.
func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, false
		}

		v = v.Elem()
	}

	return v, v.IsValid()
}

// child returns the element of v addressed by seg.
func child(v reflect.Value, seg segment) (reflect.Value, bool) {
	v, ok := indirect(v)
	if !ok {
		return v, false
	}

	switch v.Kind() {
	case reflect.Map:
		key, ok := mapKey(v.Type().Key(), seg)
		if !ok {
			return v, false
		}

		elem := v.MapIndex(key)

		return elem, elem.IsValid()

	case reflect.Struct:
		f := field(v, seg.key)

		return f, f.IsValid()

	case reflect.Slice, reflect.Array:
		i, ok := sliceIndex(v, seg)
		if !ok {
			return v, false
		}

		return v.Index(i), true

	default:
		return v, false
	}
}

// assign stores value in the element of v addressed by seg.
func assign(v reflect.Value, seg segment, value any) bool {
	v, ok := indirect(v)
	if !ok {
		return false
	}

	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return false
		}

		key, ok := mapKey(v.Type().Key(), seg)
		if !ok {
			return false
		}

		val, ok := coerce(v.Type().Elem(), value)
		if !ok {
			return false
		}

		v.SetMapIndex(key, val)

		return true

	case reflect.Struct:
		return store(field(v, seg.key), value)

	case reflect.Slice, reflect.Array:
		i, ok := sliceIndex(v, seg)
		if !ok {
			return false
		}

		return store(v.Index(i), value)

	default:
		return false
	}
}

func store(dst reflect.Value, value any) bool {
	if !dst.IsValid() || !dst.CanSet() {
		return false
	}

	val, ok := coerce(dst.Type(), value)
	if !ok {
		return false
	}

	dst.Set(val)

	return true
}

// field finds the exported struct field named name, falling back to a
// case-insensitive match.
func field(v reflect.Value, name string) reflect.Value {
	if f, ok := v.Type().FieldByName(name); ok && f.IsExported() {
		return v.FieldByIndex(f.Index)
	}

	for i := range v.NumField() {
		f := v.Type().Field(i)
		if f.IsExported() && strings.EqualFold(f.Name, name) {
			return v.Field(i)
		}
	}

	return reflect.Value{}
}

func sliceIndex(v reflect.Value, seg segment) (int, bool) {
	i := seg.index
	if !seg.isIndex {
		n, err := strconv.Atoi(seg.key)
		if err != nil {
			return 0, false
		}

		i = n
	}

	return i, 0 <= i && i < v.Len()
}

func mapKey(t reflect.Type, seg segment) (reflect.Value, bool) {
	return coerce(t, seg.key)
}

// coerce converts value to type t.
func coerce(t reflect.Type, value any) (reflect.Value, bool) {
	if value == nil {
		return reflect.Zero(t), true
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, true
	}

	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(convert.ToString(value)).Convert(t), true

	case reflect.Bool:
		return reflect.ValueOf(convert.ToBool(value)).Convert(t), true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if s, ok := value.(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return reflect.ValueOf(f).Convert(t), true
			}

			return v, false
		}
	}

	if v.Type().ConvertibleTo(t) {
		return v.Convert(t), true
	}

	return v, false
}
