package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/stencil/template"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{name: "no_call", input: "greeting", cursor: 8},
		{name: "first_arg", input: "add(", cursor: 4, wantName: "add", wantInCall: true},
		{name: "first_arg_value", input: "add(1", cursor: 5, wantName: "add", wantInCall: true},
		{name: "second_arg", input: "add(1,", cursor: 6, wantName: "add", wantIndex: 1, wantInCall: true},
		{name: "member", input: "user.greet(", cursor: 11, wantName: "user.greet", wantInCall: true},
		{name: "in_expression", input: "${upper(name", cursor: 12, wantName: "upper", wantInCall: true},
		{name: "nested_parens", input: "add(mul(2, 3),", cursor: 14, wantName: "add", wantIndex: 1, wantInCall: true},
		{name: "inside_nested", input: "add(mul(2, 3), 4)", cursor: 8, wantName: "mul", wantInCall: true},
		{name: "operator_before_name", input: "a-len(", cursor: 6, wantName: "len", wantInCall: true},
		{name: "closed", input: "len(x)", cursor: 6},
		{name: "quoted_comma", input: `join(",", `, cursor: 10, wantName: "join", wantIndex: 1, wantInCall: true},
		{name: "quoted_paren", input: `upper("(", `, cursor: 10, wantName: "upper", wantIndex: 1, wantInCall: true},
		{name: "later_expression", input: "${len(x} ${upper(", cursor: 17, wantName: "upper", wantInCall: true},
		{name: "grouping_paren", input: "${(a", cursor: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)

			if got.name != tt.wantName || got.argIndex != tt.wantIndex || got.inCall != tt.wantInCall {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want {%s %d %v}",
					tt.input, tt.cursor, got, tt.wantName, tt.wantIndex, tt.wantInCall)
			}
		})
	}
}

func TestGetSignature(t *testing.T) {
	scope := template.NewScope(map[string]any{
		"greet": func(name string, n int) string { return strings.Repeat(name, n) },
		"join":  func(sep string, parts ...string) string { return strings.Join(parts, sep) },
		"value": 3,
	})

	tests := []struct {
		name       string
		funcName   string
		wantSig    string
		wantParams []string
	}{
		{name: "root_func", funcName: "greet", wantSig: "greet(string, int)", wantParams: []string{"string", "int"}},
		{name: "root_shadows_builtin", funcName: "join", wantSig: "join(string, ...string)", wantParams: []string{"string", "...string"}},
		{name: "builtin", funcName: "upper", wantSig: "upper(string)", wantParams: []string{"string"}},
		{name: "not_a_func", funcName: "value"},
		{name: "unknown", funcName: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, params := getSignature(scope, tt.funcName)

			if sig != tt.wantSig || !slices.Equal(params, tt.wantParams) {
				t.Errorf("getSignature(%q) = %q %v, want %q %v",
					tt.funcName, sig, params, tt.wantSig, tt.wantParams)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	tests := []struct {
		name       string
		signature  string
		params     []string
		currentArg int
	}{
		{name: "no_params", signature: "greeting()", params: nil},
		{name: "first", signature: "add(x, y)", params: []string{"x", "y"}},
		{name: "second", signature: "add(x, y)", params: []string{"x", "y"}, currentArg: 1},
		{name: "variadic", signature: "concat(...parts)", params: []string{"...parts"}, currentArg: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSignatureHint(tt.signature, tt.params, tt.currentArg)

			name, _, _ := strings.Cut(tt.signature, "(")
			if !strings.Contains(got, name) {
				t.Errorf("renderSignatureHint() = %q, missing %q", got, name)
			}
		})
	}

	if got := renderSignatureHint("", nil, 0); got != "" {
		t.Errorf("renderSignatureHint(\"\") = %q, want empty", got)
	}
}
