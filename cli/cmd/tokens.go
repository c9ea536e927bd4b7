package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/stencil/template"
	"github.com/ardnew/stencil/template/token"
)

// Tokens prints the tokens of a template.
type Tokens struct {
	Source `embed:""`

	Format string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})" short:"F"`
}

// tokenEntry is the printed form of one token.
type tokenEntry struct {
	Type  token.Type `json:"type"  yaml:"type"`
	Start int        `json:"start" yaml:"start"`
	Stop  int        `json:"stop"  yaml:"stop"`
	Text  string     `json:"text"  yaml:"text"`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) error {
	text, err := t.read()
	if err != nil {
		return err
	}

	toks := template.New().Tokens(text)
	entries := make([]tokenEntry, len(toks))

	for i, tok := range toks {
		entries[i] = tokenEntry{
			Type:  tok.Type,
			Start: tok.Start,
			Stop:  tok.Stop,
			Text:  tok.Text(text),
		}
	}

	return writeTokens(stdout(ctx), t.Format, entries)
}

func writeTokens(w io.Writer, format string, entries []tokenEntry) error {
	switch format {
	case "json":
		b, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintf(w, "%s\n", b)

		return err

	case "yaml":
		b, err := yaml.Marshal(entries)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(b)

		return err

	default:
		for _, e := range entries {
			_, err := fmt.Fprintf(w, "%-11s %5d %5d %s\n",
				e.Type, e.Start, e.Stop, strconv.Quote(e.Text))
			if err != nil {
				return ErrWriteOutput.Wrap(err).
					With(slog.String("format", format))
			}
		}

		return nil
	}
}
