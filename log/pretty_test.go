package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPretty_Text(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithPretty(true),
		WithFormat(FormatText),
		WithLevel(LevelTrace),
		WithTimeLayout("none"),
	)

	logger.With(slog.String("component", "lexer")).Trace("scan",
		slog.Int("tokens", 4),
		slog.Bool("ok", true),
		slog.Group("span", slog.Int("start", 1), slog.Int("stop", 3)),
	)

	got := strings.TrimSpace(buf.String())
	want := "level=TRACE msg=scan component=lexer tokens=4 ok=true span.start=1 span.stop=3"

	if got != want {
		t.Errorf("pretty text:\n got %q\nwant %q", got, want)
	}
}

func TestPretty_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(true), WithTimeLayout("none"))
	logger.Info("hello", slog.Any("missing", nil))

	want := "{\n  level: INFO,\n  msg: hello,\n  missing: null\n}\n"
	if got := buf.String(); got != want {
		t.Errorf("pretty json:\n got %q\nwant %q", got, want)
	}
}

func TestPretty_WithGroup(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(true), WithFormat(FormatText), WithTimeLayout("none"))
	slog.New(logger.Handler().WithGroup("req")).Info("x", slog.String("id", "7"))

	if !strings.Contains(buf.String(), "req.id=7") {
		t.Errorf("expected grouped key, got %q", buf.String())
	}
}
