package template

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/klauspost/readahead"

	"github.com/ardnew/stencil/args"
	"github.com/ardnew/stencil/convert"
	"github.com/ardnew/stencil/log"
	"github.com/ardnew/stencil/template/lexer"
	"github.com/ardnew/stencil/template/token"
)

// Tokenizer converts template text into an ordered stream of tokens with
// valid, non-overlapping offsets.
type Tokenizer interface {
	Parse(src string) []token.Token
}

// ArgumentParser converts the raw argument text of a command into named
// parameters. It must not fail; unparseable text yields an empty map.
type ArgumentParser interface {
	Parse(raw string) map[string]any
}

// ArgumentParserFunc adapts a function to the [ArgumentParser] interface.
type ArgumentParserFunc func(raw string) map[string]any

// Parse implements [ArgumentParser].
func (f ArgumentParserFunc) Parse(raw string) map[string]any { return f(raw) }

// Interpreter renders templates. It reuses one output buffer across renders
// and must not be used by more than one goroutine at a time.
type Interpreter struct {
	tokenizer Tokenizer
	args      ArgumentParser
	logger    log.Logger

	buf   bytes.Buffer
	src   string
	scope *Scope
}

// Option configures an [Interpreter].
type Option func(*Interpreter)

// WithLogger sets the logger that receives trace output. The zero
// [log.Logger] discards everything.
func WithLogger(logger log.Logger) Option {
	return func(in *Interpreter) { in.logger = logger }
}

// WithTokenizer replaces the default [lexer.Lexer].
func WithTokenizer(t Tokenizer) Option {
	return func(in *Interpreter) {
		if t != nil {
			in.tokenizer = t
		}
	}
}

// WithArgumentParser replaces the default [args.Parse].
func WithArgumentParser(p ArgumentParser) Option {
	return func(in *Interpreter) {
		if p != nil {
			in.args = p
		}
	}
}

// New returns an Interpreter configured by opts.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		tokenizer: lexer.New(),
		args:      ArgumentParserFunc(args.Parse),
	}

	for _, opt := range opts {
		opt(in)
	}

	return in
}

// Render renders text against roots.
func (in *Interpreter) Render(text string, roots ...any) (string, error) {
	return in.RenderContext(context.Background(), text, roots...)
}

// RenderContext renders text against roots. Root objects are searched in
// order for names not bound by a command.
func (in *Interpreter) RenderContext(
	ctx context.Context,
	text string,
	roots ...any,
) (string, error) {
	in.buf.Reset()
	in.src = text
	in.scope = NewScope(roots...)

	toks := in.tokenizer.Parse(text)

	in.logger.TraceContext(ctx, "render",
		slog.Int("source_bytes", len(text)),
		slog.Int("tokens", len(toks)),
		slog.Int("roots", len(roots)),
	)

	nodes, err := nest(text, toks)
	if err != nil {
		return "", err
	}

	if err := in.walk(ctx, nodes); err != nil {
		return "", err
	}

	return in.buf.String(), nil
}

// RenderReader reads the template from r and renders it against roots.
func (in *Interpreter) RenderReader(
	ctx context.Context,
	r io.Reader,
	roots ...any,
) (string, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return in.RenderContext(ctx, string(data), roots...)
}

// Tokens returns the tokens of text as seen by the interpreter.
func (in *Interpreter) Tokens(text string) []token.Token {
	return in.tokenizer.Parse(text)
}

// Scope returns the variable scope of the most recent render, or nil if
// nothing has been rendered.
func (in *Interpreter) Scope() *Scope { return in.scope }

// walk renders nodes in order.
func (in *Interpreter) walk(ctx context.Context, nodes []*node) error {
	if err := ctx.Err(); err != nil {
		return ErrCanceled.Wrap(err)
	}

	for _, n := range nodes {
		switch n.tok.Type {
		case token.Text:
			in.buf.WriteString(n.tok.Text(in.src))

		case token.Expression:
			v := in.scope.Lookup(n.tok.Text(in.src))
			in.buf.WriteString(convert.ToString(v))

		case token.Command:
			p := params{raw: in.args.Parse(n.args), scope: in.scope}
			if err := in.dispatch(ctx, n.name, p, n.body); err != nil {
				return err
			}
		}
	}

	return nil
}
