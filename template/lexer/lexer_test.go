package lexer

import (
	"slices"
	"testing"

	"github.com/ardnew/stencil/template/token"
)

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}

	return out
}

func texts(src string, toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text(src)
	}

	return out
}

// checkMarkers verifies every command is followed by a body marker and that
// a non-empty marker stops where some later token stops.
func checkMarkers(t *testing.T, toks []token.Token) {
	t.Helper()

	for i, tok := range toks {
		if tok.Type != token.Command {
			continue
		}

		if i+1 >= len(toks) || toks[i+1].Type != token.CommandBody {
			t.Fatalf("command at %d not followed by body marker", i)
		}

		marker := toks[i+1]
		if marker.IsEmpty() {
			continue
		}

		found := false

		for _, next := range toks[i+2:] {
			if next.Stop == marker.Stop {
				found = true

				break
			}
		}

		if !found {
			t.Errorf("marker %v has no closing token", marker)
		}
	}
}

const (
	T = token.Text
	E = token.Expression
	C = token.Command
	B = token.CommandBody
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantTypes []token.Type
		wantTexts []string
	}{
		{
			name:      "plain_text",
			src:       "just text",
			wantTypes: []token.Type{T},
			wantTexts: []string{"just text"},
		},
		{
			name:      "empty",
			src:       "",
			wantTypes: []token.Type{},
			wantTexts: []string{},
		},
		{
			name:      "expression",
			src:       "Hello ${name}!",
			wantTypes: []token.Type{T, E, T},
			wantTexts: []string{"Hello ", "name", "!"},
		},
		{
			name:      "expression_with_braces",
			src:       `${ {"a": "}"}.a }`,
			wantTypes: []token.Type{E},
			wantTexts: []string{` {"a": "}"}.a `},
		},
		{
			name:      "escaped_expression",
			src:       `a\${x}`,
			wantTypes: []token.Type{T, T},
			wantTexts: []string{"a", "${x}"},
		},
		{
			name:      "unterminated_expression",
			src:       "a ${b",
			wantTypes: []token.Type{T},
			wantTexts: []string{"a ${b"},
		},
		{
			name:      "command_with_body",
			src:       `<c:if test="$ok">yes</c:if>`,
			wantTypes: []token.Type{C, B, T},
			wantTexts: []string{`if test="$ok"`, "yes", "yes"},
		},
		{
			name:      "self_closing",
			src:       `a<c:set var="x" value="1" />b`,
			wantTypes: []token.Type{T, C, B, T},
			wantTexts: []string{"a", `set var="x" value="1"`, "", "b"},
		},
		{
			name:      "empty_body",
			src:       `<c:if test="x"></c:if>!`,
			wantTypes: []token.Type{C, B, T},
			wantTexts: []string{`if test="x"`, "", "!"},
		},
		{
			name:      "quoted_gt_in_args",
			src:       `<c:if test="a > b">y</c:if>`,
			wantTypes: []token.Type{C, B, T},
			wantTexts: []string{`if test="a > b"`, "y", "y"},
		},
		{
			name:      "nested",
			src:       `<c:each items="xs"><c:if test="$item">${item}</c:if>.</c:each>`,
			wantTypes: []token.Type{C, B, C, B, E, T},
			wantTexts: []string{
				`each items="xs"`,
				`<c:if test="$item">${item}</c:if>.`,
				`if test="$item"`,
				"${item",
				"item",
				".",
			},
		},
		{
			name:      "nested_at_body_end",
			src:       `<c:if test="a"><c:if test="b">x</c:if></c:if>`,
			wantTypes: []token.Type{C, B, C, B, T},
			wantTexts: []string{`if test="a"`, `<c:if test="b">x`, `if test="b"`, "x", "x"},
		},
		{
			name:      "stray_close_tag",
			src:       "x</c:if>y",
			wantTypes: []token.Type{T},
			wantTexts: []string{"x</c:if>y"},
		},
		{
			name:      "ancestor_close_tag",
			src:       `<c:each items="a"><c:if test="b">x</c:each>y`,
			wantTypes: []token.Type{C, B, C, B, T, T},
			wantTexts: []string{`each items="a"`, `<c:if test="b">x`, `if test="b"`, "x", "x", "y"},
		},
		{
			name:      "unclosed_body",
			src:       `<c:if test="a">body`,
			wantTypes: []token.Type{C, B, T},
			wantTexts: []string{`if test="a"`, "body", "body"},
		},
		{
			name:      "malformed_tags",
			src:       `<c:> <c:if`,
			wantTypes: []token.Type{T},
			wantTexts: []string{`<c:> <c:if`},
		},
		{
			name:      "ordinary_markup",
			src:       `<b>${x}</b>`,
			wantTypes: []token.Type{T, E, T},
			wantTexts: []string{"<b>", "x", "</b>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := Tokenize(tt.src)

			if got := types(toks); !slices.Equal(got, tt.wantTypes) {
				t.Fatalf("types = %v, want %v", got, tt.wantTypes)
			}

			if got := texts(tt.src, toks); !slices.Equal(got, tt.wantTexts) {
				t.Errorf("texts = %q, want %q", got, tt.wantTexts)
			}

			checkMarkers(t, toks)
		})
	}
}

func TestParse_SourceOrder(t *testing.T) {
	src := `a${b}<c:each items="x"><c:set var="y"/>${y}</c:each>z`

	prev := 0

	for _, tok := range Tokenize(src) {
		if tok.Type == B {
			continue
		}

		if tok.Start < prev {
			t.Fatalf("token %v starts before previous stop %d", tok, prev)
		}

		prev = tok.Stop
	}
}

func TestParse_CustomDelims(t *testing.T) {
	l := New(
		WithExpressionDelims("{{", "}}"),
		WithCommandPrefix("t:"),
	)

	src := `{{a}} <t:if test="x">y</t:if> ${b} <c:if>`
	toks := l.Parse(src)

	wantTypes := []token.Type{E, T, C, B, T, T}
	if got := types(toks); !slices.Equal(got, wantTypes) {
		t.Fatalf("types = %v, want %v", got, wantTypes)
	}

	wantTexts := []string{"a", " ", `if test="x"`, "y", "y", " ${b} <c:if>"}
	if got := texts(src, toks); !slices.Equal(got, wantTexts) {
		t.Errorf("texts = %q, want %q", got, wantTexts)
	}
}
