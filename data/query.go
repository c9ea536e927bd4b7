package data

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// dsn returns the connection URI opening the database file at path in the
// given SQLite mode ("ro", "rw", "rwc"). The path is escaped so that "?" and
// "#" in file names are not read as URI delimiters.
func dsn(path, mode string) string {
	u := url.URL{
		Scheme:   "file",
		Opaque:   (&url.URL{Path: path}).EscapedPath(),
		RawQuery: "mode=" + mode,
	}

	return u.String()
}

// Query runs query against the SQLite database at path and returns the rows
// as maps from column name to value. TEXT and BLOB columns are returned as
// strings. The database is opened read-only.
func Query(
	ctx context.Context,
	path, query string,
	args ...any,
) ([]map[string]any, error) {
	db, err := sql.Open(driverName, dsn(path, "ro"))
	if err != nil {
		return nil, ErrOpen.Wrap(err).With(slog.String("path", path))
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ErrQuery.Wrap(err).With(
			slog.String("path", path),
			slog.String("query", query),
		)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, ErrQuery.Wrap(err).With(slog.String("query", query))
	}

	out := []map[string]any{}

	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))

		for i := range vals {
			ptrs[i] = &vals[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, ErrQuery.Wrap(err).With(slog.String("query", query))
		}

		row := make(map[string]any, len(cols))

		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = vals[i]
			}
		}

		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, ErrQuery.Wrap(err).With(slog.String("query", query))
	}

	return out, nil
}
