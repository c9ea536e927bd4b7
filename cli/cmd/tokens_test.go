package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/stencil/template/token"
)

func TestWriteTokens(t *testing.T) {
	entries := []tokenEntry{
		{Type: token.Text, Start: 0, Stop: 3, Text: "hi "},
		{Type: token.Expression, Start: 5, Stop: 9, Text: "name"},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeTokens(&buf, "text", entries); err != nil {
			t.Fatal(err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
		}

		if f := strings.Fields(lines[1]); len(f) != 4 || f[0] != "Expression" || f[3] != `"name"` {
			t.Errorf("line = %q", lines[1])
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeTokens(&buf, "json", entries); err != nil {
			t.Fatal(err)
		}

		var got []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatal(err)
		}

		if len(got) != 2 || got[1]["type"] != "Expression" || got[1]["text"] != "name" {
			t.Errorf("json = %v", got)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeTokens(&buf, "yaml", entries); err != nil {
			t.Fatal(err)
		}

		var got []map[string]any
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatal(err)
		}

		if len(got) != 2 || got[0]["type"] != "Text" || got[0]["text"] != "hi " {
			t.Errorf("yaml = %v", got)
		}
	})
}

func TestTokensRun(t *testing.T) {
	var buf bytes.Buffer

	ktx := testKongContext(t, &buf)

	tok := Tokens{Source: Source{Text: "a${b}"}, Format: "text"}
	if err := tok.Run(WithContext(t.Context(), ktx)); err != nil {
		t.Fatal(err)
	}

	want := []string{"Text", "Expression"}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}

	for i, w := range want {
		if !strings.HasPrefix(lines[i], w) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], w)
		}
	}
}
