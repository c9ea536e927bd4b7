// Package data loads the root objects a template is rendered against.
//
// Roots come from three kinds of source:
//
//   - YAML or JSON documents ([LoadFile], [LoadReader]),
//   - rows returned by an SQL query against a SQLite database ([Query]),
//   - KEY=VALUE assignments given on the command line ([ParseAssignments]).
package data

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"
)

// LoadFile decodes the YAML or JSON document in the file at path.
func LoadFile(ctx context.Context, path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrOpen.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	v, err := LoadReader(ctx, f)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, e.With(slog.String("path", path))
		}

		return nil, err
	}

	return v, nil
}

// LoadReader decodes the YAML or JSON document read from r. An empty
// document decodes to an empty map.
func LoadReader(ctx context.Context, r io.Reader) (any, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	b, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrRead.Wrap(err)
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return map[string]any{}, nil
	}

	var v any
	if err := yaml.UnmarshalContext(ctx, b, &v); err != nil {
		return nil, ErrDecode.Wrap(err)
	}

	if v == nil {
		return map[string]any{}, nil
	}

	return v, nil
}
