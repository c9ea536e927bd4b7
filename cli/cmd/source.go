package cmd

import (
	"io"
	"log/slog"
	"strings"
)

// Source selects the template text from a file, stdin or the command line.
type Source struct {
	Template string `arg:"" default:"-" help:"Template file or '-' for stdin" optional:"" type:"existingfile"`
	Text     string `help:"Template text given inline (overrides TEMPLATE)" placeholder:"TEXT" short:"e"`
}

// name identifies the template source in log messages.
func (s *Source) name() string {
	if s.Text != "" {
		return "inline"
	}

	if s.Template == "" {
		return stdinSource
	}

	return s.Template
}

// open returns a reader over the template text.
func (s *Source) open() (io.ReadCloser, error) {
	if s.Text != "" {
		return io.NopCloser(strings.NewReader(s.Text)), nil
	}

	r, err := openSource(s.Template)
	if err != nil {
		return nil, ErrReadTemplate.Wrap(err).
			With(slog.String("template", s.name()))
	}

	return r, nil
}

// read returns the complete template text.
func (s *Source) read() (string, error) {
	r, err := s.open()
	if err != nil {
		return "", err
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return "", ErrReadTemplate.Wrap(err).
			With(slog.String("template", s.name()))
	}

	return string(b), nil
}
