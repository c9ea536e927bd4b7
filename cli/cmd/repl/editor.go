package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/ardnew/stencil/log"
	"github.com/ardnew/stencil/template"
)

const defaultEditor = "vi"

// editTemplateCommand implements [tea.ExecCommand] for the template
// edit-render-retry loop. It writes the current template to a temp file,
// opens the user's editor, and renders the result. On a render error the
// user is prompted to re-edit; declining returns [ErrEditDeclined].
type editTemplateCommand struct {
	text    string
	roots   []any
	ctxFunc func() context.Context
	logger  log.Logger

	// Set by Run on success.
	edited string
	output string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editTemplateCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editTemplateCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editTemplateCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-render-retry loop. An emptied file cancels the edit
// and leaves edited unset.
func (c *editTemplateCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "stencil-repl-*.tmpl")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Close(); err != nil {
		return err
	}

	content := c.text
	in := template.New(template.WithLogger(c.logger))

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		content = strings.TrimRight(string(data), "\n")

		out, renderErr := in.RenderContext(ctx, content, c.roots...)
		c.logger.TraceContext(
			ctx,
			"editor render attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", renderErr == nil),
		)

		if renderErr == nil {
			c.edited, c.output = content, out

			return nil
		}

		fmt.Fprintf(c.stderr, "\nRender error: %s\n", renderErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}
	}
}

// editorCommand returns the argv of the user's editor followed by path.
// $VISUAL takes precedence over $EDITOR, and either may carry arguments
// quoted as in a shell, e.g. `code --wait`.
func editorCommand(path string) ([]string, error) {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	argv, err := shellquote.Split(editor)
	if err != nil {
		return nil, err
	}

	if len(argv) == 0 {
		return nil, ErrNoEditor
	}

	return append(argv, path), nil
}

// runEditor launches the user's editor on the given file path and waits for
// it to exit.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	argv, err := editorCommand(path)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
