package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/ardnew/stencil/log"
	"github.com/ardnew/stencil/template"
)

// defaultFileMode is the permission mode of files written by commands.
const defaultFileMode os.FileMode = 0o644

// Render renders a template against the root objects selected by [Data].
type Render struct {
	Source `embed:""`
	Data   `embed:""`

	Output string `help:"Write output to FILE instead of stdout" placeholder:"FILE" short:"o" type:"path"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	roots, err := r.Roots(ctx)
	if err != nil {
		return err
	}

	src, err := r.open()
	if err != nil {
		return err
	}
	defer src.Close()

	in := template.New(template.WithLogger(log.Default()))

	out, err := in.RenderReader(ctx, src, roots...)
	if err != nil {
		return err
	}

	n, err := r.write(ctx, out)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "rendered template",
		slog.String("template", r.name()),
		slog.Int("roots", len(roots)),
		slog.String("size", humanize.Bytes(uint64(n))), //nolint:gosec
	)

	return nil
}

func (r *Render) write(ctx context.Context, out string) (int, error) {
	if r.Output == "" {
		n, err := io.WriteString(stdout(ctx), out)
		if err != nil {
			return n, ErrWriteOutput.Wrap(err)
		}

		return n, nil
	}

	err := os.WriteFile(r.Output, []byte(out), defaultFileMode)
	if err != nil {
		return 0, ErrWriteOutput.Wrap(err).With(slog.String("file", r.Output))
	}

	return len(out), nil
}
