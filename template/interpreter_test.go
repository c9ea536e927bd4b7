package template

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/stencil/template/token"
)

type person struct {
	Name string
	Age  int
}

// fragile has members that panic when read or printed.
type fragile struct{}

func (fragile) Boom() string { panic("boom") }

func (fragile) Loud() loud { return loud{} }

type loud struct{}

func (loud) String() string { panic("loud") }

func testRoots() map[string]any {
	return map[string]any{
		"name":  "Ada",
		"admin": true,
		"guest": false,
		"items": []any{"a", "b", "c", "d", "e"},
		"empty": []any{},
		"user":  &person{Name: "Lin", Age: 3},
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "plain", text: "hello world", want: "hello world"},
		{name: "empty", text: "", want: ""},
		{name: "expression", text: "Hi ${name}!", want: "Hi Ada!"},
		{name: "missing_expression", text: "[${nope}]", want: "[]"},
		{name: "struct_member", text: "${user.Name}:${user.Age}", want: "Lin:3"},
		{name: "escape", text: `\${name}`, want: "${name}"},

		{name: "if_true", text: `<c:if test="$admin">yes</c:if>`, want: "yes"},
		{name: "if_false", text: `<c:if test="$guest">yes</c:if>`, want: ""},
		{name: "unless_true", text: `<c:unless test="$admin">no</c:unless>`, want: ""},
		{name: "unless_false", text: `<c:unless test=$guest>ok</c:unless>`, want: "ok"},
		{name: "if_literal", text: `<c:if test=true>a</c:if><c:if test=no>b</c:if>`, want: "a"},
		{name: "if_missing_test", text: `<c:if>a</c:if>`, want: ""},
		{name: "if_expression", text: `<c:if test="${len(items) > 3}">many</c:if>`, want: "many"},
		{
			name: "if_var_captured_when_skipped",
			text: `<c:if test=$guest var=shown>x</c:if>[${shown}]`,
			want: "[false]",
		},
		{
			name: "unless_var",
			text: `<c:unless test=$guest var=v/>${v}`,
			want: "true",
		},

		{name: "set_number", text: `<c:set var=x value=5/>${x + 1}`, want: "6"},
		{name: "set_string", text: `<c:let var=s value="'hi'"/>${s}`, want: "hi"},
		{name: "set_reference", text: `<c:var var=n value=name/>${n}`, want: "Ada"},
		{name: "set_missing_value", text: `<c:def var=n value=nope/>[${n}]`, want: "[]"},
		{name: "set_body_ignored", text: `<c:assign var=x value=1>body</c:assign>${x}`, want: "1"},
		{
			name: "set_property",
			text: `<c:set target=user property=Age value=40/>${user.Age}`,
			want: "40",
		},
		{
			name: "set_property_nil_target",
			text: `<c:define target=nobody property=x value=1/>ok`,
			want: "ok",
		},

		{name: "loop", text: `<c:loop items=$items>${item}</c:loop>`, want: "abcde"},
		{
			name: "loop_bounds",
			text: `<c:loop items=$items begin=1 end=4 step=2>${status.index}/${status.count};</c:loop>`,
			want: "1/5;3/5;",
		},
		{
			name: "loop_names",
			text: `<c:for items=items var=x varStatus=st>${st.index}=${x} </c:for>`,
			want: "0=a 1=b 2=c 3=d 4=e ",
		},
		{name: "loop_index", text: `<c:each items=$items end=2>${index}</c:each>`, want: "01"},
		{name: "loop_varargs", text: `<c:each items=$empty a b c>${item}</c:each>`, want: "abc"},
		{name: "loop_varargs_no_items", text: `<c:list x y>${item}</c:list>`, want: "xy"},
		{name: "loop_empty", text: `<c:forEach items=$empty>${item}</c:forEach>`, want: ""},
		{name: "loop_missing", text: `<c:foreach items=$nope>${item}</c:foreach>`, want: ""},
		{name: "loop_step_zero", text: `<c:loop items=$items step=0 end=2>${item}</c:loop>`, want: "ab"},
		{
			name: "loop_status_effective_bounds",
			text: `<c:each items=$items begin=4>${status.begin}/${status.end}/${status.step}</c:each>`,
			want: "4/5/1",
		},
		{
			name: "loop_status_wins_name_clash",
			text: `<c:each items=$items end=2 var=s varStatus=s>${s.index}</c:each>`,
			want: "01",
		},
		{name: "loop_end_past_count", text: `<c:loop items=$items begin=3 end=99>${item}</c:loop>`, want: "de"},
		{
			name: "loop_map",
			text: `<c:loop items="{b: 2, a: 1}">${item.key}=${item.value};</c:loop>`,
			want: "a=1;b=2;",
		},
		{
			name: "loop_first_last",
			text: `<c:loop items="[1, 2, 3]">${item}<c:unless test="${status.Last()}">,</c:unless></c:loop>`,
			want: "1,2,3",
		},
		{
			name: "loop_frame_does_not_leak",
			text: `<c:loop items=$items end=1><c:set var=inner value=1/></c:loop>[${inner}][${item}][${status}]`,
			want: "[][][]",
		},
		{
			name: "loop_shadows_root",
			text: `<c:loop items="['x']" var=name>${name}</c:loop>${name}`,
			want: "xAda",
		},
		{
			name: "nested_at_body_end",
			text: `<c:loop items=$items end=3><c:if test="${status.index != 1}">${item}</c:if></c:loop>`,
			want: "ac",
		},
		{
			name: "nested_loops",
			text: `<c:loop items="[1, 2]" var=i><c:loop items="[3, 4]" var=j>${i * j},</c:loop>|</c:loop>`,
			want: "3,4,|6,8,|",
		},
		{
			name: "nested_if_in_if",
			text: `<c:if test=$admin>(<c:if test=$admin>in</c:if>)</c:if>after`,
			want: "(in)after",
		},
		{
			name: "nested_empty_at_body_end",
			text: `<c:if test=$admin>x<c:set var=y value=2/></c:if>${y}`,
			want: "x2",
		},

		{name: "unknown_command", text: `a<c:bogus x=1>hidden ${name}</c:bogus>b`, want: "ab"},
		{name: "case_sensitive", text: `<c:IF test=true>x</c:IF>`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().RenderContext(t.Context(), tt.text, testRoots())
			if err != nil {
				t.Fatalf("RenderContext() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("RenderContext() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_PanickingRoot(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "method", text: "a${Boom}b", want: "ab"},
		{name: "stringer", text: "a${Loud}b", want: "ab"},
		{name: "condition", text: `<c:if test=$Boom>x</c:if>y`, want: "y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Render(tt.text, fragile{})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_BufferReuse(t *testing.T) {
	in := New()

	first, err := in.Render("first ${name}", testRoots())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	second, err := in.Render("2nd")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if first != "first Ada" {
		t.Errorf("first = %q", first)
	}

	if second != "2nd" {
		t.Errorf("second = %q, want %q", second, "2nd")
	}
}

func TestRender_ScopeResetBetweenRenders(t *testing.T) {
	in := New()

	if _, err := in.Render(`<c:set var=x value=1/>`); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	got, err := in.Render(`[${x}]`)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if got != "[]" {
		t.Errorf("Render() = %q, want %q", got, "[]")
	}
}

func TestRender_RootOrder(t *testing.T) {
	got, err := New().Render("${a}${b}",
		map[string]any{"a": "1"},
		map[string]any{"a": "2", "b": "3"},
		&person{Name: "ignored"},
	)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if got != "13" {
		t.Errorf("Render() = %q, want %q", got, "13")
	}
}

// fixedTokens is a tokenizer that ignores its input.
type fixedTokens []token.Token

func (f fixedTokens) Parse(string) []token.Token { return f }

func TestRender_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		toks fixedTokens
		want error
	}{
		{
			name: "missing_body",
			src:  "if x",
			toks: fixedTokens{token.Make(token.Command, 0, 4)},
			want: ErrMissingBody,
		},
		{
			name: "body_not_marker",
			src:  "if xabc",
			toks: fixedTokens{
				token.Make(token.Command, 0, 4),
				token.Make(token.Text, 4, 7),
			},
			want: ErrMissingBody,
		},
		{
			name: "unclosed_body",
			src:  "if xyz",
			toks: fixedTokens{
				token.Make(token.Command, 0, 2),
				token.Make(token.CommandBody, 2, 6),
				token.Make(token.Text, 2, 4),
			},
			want: ErrUnclosedBody,
		},
		{
			name: "range",
			src:  "abc",
			toks: fixedTokens{token.Make(token.Text, 0, 99)},
			want: ErrTokenRange,
		},
		{
			name: "negative",
			src:  "abc",
			toks: fixedTokens{token.Make(token.Text, -2, 1)},
			want: ErrTokenRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithTokenizer(tt.toks)).Render(tt.src)
			if !errors.Is(err, tt.want) {
				t.Errorf("Render() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRender_CustomTokens(t *testing.T) {
	src := "if test=true;body"
	toks := fixedTokens{
		token.Make(token.Command, 0, 12),
		token.Make(token.CommandBody, 13, 17),
		token.Make(token.Text, 13, 17),
		token.Synthetic(token.Text),
	}

	got, err := New(WithTokenizer(toks)).Render(src)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if got != "body" {
		t.Errorf("Render() = %q, want %q", got, "body")
	}
}

func TestRender_ArgumentParser(t *testing.T) {
	parser := ArgumentParserFunc(func(string) map[string]any {
		return map[string]any{"test": true}
	})

	got, err := New(WithArgumentParser(parser)).Render(`<c:if anything>ok</c:if>`)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if got != "ok" {
		t.Errorf("Render() = %q, want %q", got, "ok")
	}
}

func TestRender_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := New().RenderContext(ctx, "text")
	if !errors.Is(err, ErrCanceled) {
		t.Errorf("RenderContext() error = %v, want %v", err, ErrCanceled)
	}

	if !errors.Is(err, context.Canceled) {
		t.Errorf("RenderContext() error = %v, want wrapped %v", err, context.Canceled)
	}
}

func TestRenderReader(t *testing.T) {
	got, err := New().RenderReader(t.Context(),
		strings.NewReader(`<c:loop items=$items end=2>${item}</c:loop>`), testRoots())
	if err != nil {
		t.Fatalf("RenderReader() error = %v", err)
	}

	if got != "ab" {
		t.Errorf("RenderReader() = %q, want %q", got, "ab")
	}
}

func TestTokens(t *testing.T) {
	toks := New().Tokens(`a${b}<c:if test=1>c</c:if>`)

	want := []token.Type{
		token.Text, token.Expression, token.Command, token.CommandBody, token.Text,
	}

	if len(toks) != len(want) {
		t.Fatalf("Tokens() = %v, want %d tokens", toks, len(want))
	}

	for i, tok := range toks {
		if tok.Type != want[i] {
			t.Errorf("token %d = %v, want %v", i, tok.Type, want[i])
		}
	}
}

func TestCommands(t *testing.T) {
	names := Commands()

	for _, want := range []string{
		"if", "unless",
		"set", "let", "var", "define", "def", "assign",
		"list", "for", "forEach", "foreach", "loop", "each",
	} {
		if _, ok := Canonical(want); !ok {
			t.Errorf("Canonical(%q) not found", want)
		}

		found := false

		for _, n := range names {
			found = found || n == want
		}

		if !found {
			t.Errorf("Commands() missing %q", want)
		}
	}

	if len(names) != 14 {
		t.Errorf("len(Commands()) = %d, want 14", len(names))
	}

	if c, _ := Canonical("forEach"); c != "loop" {
		t.Errorf("Canonical(forEach) = %q, want loop", c)
	}
}

func TestArguments(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{name: "unless", want: []string{"test", "var"}},
		{name: "def", want: []string{"var", "value", "target", "property"}},
		{name: "each", want: []string{"items", "var", "varStatus", "begin", "end", "step"}},
		{name: "nope", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Arguments(tt.name); !slices.Equal(got, tt.want) {
				t.Errorf("Arguments(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
