// Package args parses the argument text of a template command into a
// parameter map.
//
// Argument text is split into words with shell quoting rules, so values may
// contain spaces when quoted:
//
//	items=$users var=u varStatus=s
//	test="${count > 0}"
//	value="'literal string'"
//	a b c
//
// A word of the form key=value binds value to key. Values are decoded as
// YAML flow scalars and collections, so numbers, booleans and lists such as
// [1, 2, 3] arrive typed; anything that decodes to a string is kept exactly
// as written. Words without a key are collected, in order, under [VarArgs].
//
// Quotes are consumed by the split: a string literal meant for an
// expression must be quoted twice, as in value="'text'".
package args

import (
	"math"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/kballard/go-shellquote"
)

// VarArgs is the parameter key holding the keyless words of an argument
// list as a []any.
const VarArgs = "varargs"

// Parse returns the parameters encoded in raw. It never fails: text that
// cannot be split (e.g. an unterminated quote) yields an empty map.
func Parse(raw string) map[string]any {
	params := make(map[string]any)

	words, err := shellquote.Split(raw)
	if err != nil {
		return params
	}

	var varargs []any

	for _, word := range words {
		if key, val, ok := cutKey(word); ok {
			params[key] = Value(val)

			continue
		}

		varargs = append(varargs, Value(word))
	}

	if len(varargs) > 0 {
		params[VarArgs] = varargs
	}

	return params
}

// cutKey splits word at its first "=" when the text before it is a valid
// parameter name.
func cutKey(word string) (key, val string, ok bool) {
	key, val, ok = strings.Cut(word, "=")
	if !ok || key == "" {
		return "", "", false
	}

	for i := range len(key) {
		if !isKeyByte(key[i]) {
			return "", "", false
		}
	}

	return key, val, true
}

func isKeyByte(c byte) bool {
	return c == '_' || c == '-' || c == '.' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// Value decodes a single argument value. Empty text and text that decodes to
// a string (or fails to decode) are returned unchanged; integers decode to
// int when they fit.
func Value(s string) any {
	if strings.TrimSpace(s) == "" {
		return s
	}

	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}

	switch v.(type) {
	case nil, string:
		return s
	}

	return normalize(v)
}

// normalize narrows the integer types produced by the YAML decoder.
func normalize(v any) any {
	switch t := v.(type) {
	case uint64:
		if t <= math.MaxInt {
			return int(t)
		}

	case int64:
		if math.MinInt <= t && t <= math.MaxInt {
			return int(t)
		}

	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}

	case map[string]any:
		for k := range t {
			t[k] = normalize(t[k])
		}
	}

	return v
}
