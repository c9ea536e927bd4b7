package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/stencil/data"
	"github.com/ardnew/stencil/log"
)

// Data selects the root objects a template is rendered against.
type Data struct {
	Set       []string `help:"Assign KEY=VALUE in the first root object (dotted keys nest)" placeholder:"KEY=VALUE" short:"s"`
	Files     []string `help:"YAML or JSON data file(s) or '-' for stdin"                    name:"data"               short:"d" type:"existingfile"`
	SQLite    string   `help:"SQLite database providing query rows"                          placeholder:"DB"                    type:"existingfile"`
	Query     string   `help:"SQL query run against --sqlite"                                placeholder:"SQL"`
	QueryName string   `help:"Root key holding the query rows"                               default:"rows"`
}

// Roots loads the root objects in lookup order: the --set assignments, then
// the --query rows, then each data file in the order given. Duplicate data
// files are loaded once.
func (d *Data) Roots(ctx context.Context) ([]any, error) {
	var roots []any

	if len(d.Set) > 0 {
		set, err := data.ParseAssignments(d.Set)
		if err != nil {
			return nil, ErrLoadData.Wrap(err)
		}

		log.DebugContext(ctx, "root loaded",
			slog.String("source", "set"),
			slog.Int("keys", len(set)),
		)

		roots = append(roots, set)
	}

	if (d.SQLite == "") != (d.Query == "") {
		return nil, ErrQueryRequired.With(
			slog.String("sqlite", d.SQLite),
			slog.String("query", d.Query),
		)
	}

	if d.SQLite != "" {
		rows, err := data.Query(ctx, d.SQLite, d.Query)
		if err != nil {
			return nil, ErrLoadData.Wrap(err)
		}

		log.DebugContext(ctx, "root loaded",
			slog.String("source", "sqlite"),
			slog.String("name", d.QueryName),
			slog.Int("rows", len(rows)),
		)

		roots = append(roots, map[string]any{d.QueryName: rows})
	}

	for _, path := range uniquePaths(d.Files) {
		var (
			root any
			err  error
		)

		if path == stdinSource {
			root, err = data.LoadReader(ctx, os.Stdin)
		} else {
			root, err = data.LoadFile(ctx, path)
		}

		if err != nil {
			return nil, ErrLoadData.Wrap(err).With(slog.String("path", path))
		}

		log.DebugContext(ctx, "root loaded",
			slog.String("source", "file"),
			slog.String("path", path),
		)

		roots = append(roots, root)
	}

	return roots, nil
}
