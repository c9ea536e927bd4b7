package data

import (
	"log/slog"
	"strings"

	"github.com/ardnew/stencil/args"
)

// ParseAssignments builds a map from KEY=VALUE assignments. Dotted keys
// create nested maps, so "db.host=x" yields {"db": {"host": "x"}}. Values are
// decoded like command arguments: numbers, booleans and flow collections are
// typed, anything else is a string. Later assignments win.
func ParseAssignments(kv []string) (map[string]any, error) {
	out := make(map[string]any)

	for _, s := range kv {
		key, val, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)

		if !ok || key == "" {
			return nil, ErrAssignment.With(slog.String("arg", s))
		}

		parts := strings.Split(key, ".")
		m := out

		for _, p := range parts[:len(parts)-1] {
			next, ok := m[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				m[p] = next
			}

			m = next
		}

		m[parts[len(parts)-1]] = args.Value(val)
	}

	return out, nil
}
