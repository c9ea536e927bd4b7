package repl

import (
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/stencil/resolve"
	"github.com/ardnew/stencil/template"
	"github.com/ardnew/stencil/template/lexer"
)

// exprLangBuiltins defines signatures for expr-lang's builtin functions.
// Source: https://expr-lang.org/docs/language-definition
//
//nolint:gochecknoglobals
var exprLangBuiltins = map[string]struct {
	signature string
	params    []string
}{
	"len":    {"len(v)", []string{"v"}},
	"all":    {"all(array, predicate)", []string{"array", "predicate"}},
	"any":    {"any(array, predicate)", []string{"array", "predicate"}},
	"one":    {"one(array, predicate)", []string{"array", "predicate"}},
	"none":   {"none(array, predicate)", []string{"array", "predicate"}},
	"map":    {"map(array, mapper)", []string{"array", "mapper"}},
	"filter": {"filter(array, predicate)", []string{"array", "predicate"}},
	"find":   {"find(array, predicate)", []string{"array", "predicate"}},
	"findIndex": {
		"findIndex(array, predicate)",
		[]string{"array", "predicate"},
	},
	"findLast": {
		"findLast(array, predicate)",
		[]string{"array", "predicate"},
	},
	"findLastIndex": {
		"findLastIndex(array, predicate)",
		[]string{"array", "predicate"},
	},
	"groupBy": {"groupBy(array, mapper)", []string{"array", "mapper"}},
	"sortBy":  {"sortBy(array, mapper)", []string{"array", "mapper"}},
	"count":   {"count(array, predicate)", []string{"array", "predicate"}},
	"sum":     {"sum(array)", []string{"array"}},
	"mean":    {"mean(array)", []string{"array"}},
	"median":  {"median(array)", []string{"array"}},
	"min":     {"min(array)", []string{"array"}},
	"max":     {"max(array)", []string{"array"}},
	"join":    {"join(array, separator)", []string{"array", "separator"}},
	"split": {
		"split(string, separator)",
		[]string{"string", "separator"},
	},
	"replace": {
		"replace(string, old, new)",
		[]string{"string", "old", "new"},
	},
	"trim":      {"trim(string)", []string{"string"}},
	"trimLeft":  {"trimLeft(string)", []string{"string"}},
	"trimRight": {"trimRight(string)", []string{"string"}},
	"upper":     {"upper(string)", []string{"string"}},
	"lower":     {"lower(string)", []string{"string"}},
	"title":     {"title(string)", []string{"string"}},
	"int":       {"int(v)", []string{"v"}},
	"float":     {"float(v)", []string{"v"}},
	"string":    {"string(v)", []string{"v"}},
	"type":      {"type(v)", []string{"v"}},
}

// exprLangBuiltinNames returns the names of all expr-lang builtin functions.
func exprLangBuiltinNames() []string {
	names := make([]string, 0, len(exprLangBuiltins))
	for name := range exprLangBuiltins {
		names = append(names, name)
	}

	return names
}

// signatureHintStyle styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall describes the call whose argument list holds the cursor.
type functionCall struct {
	name     string // dotted callee path, e.g. "user.greet"
	argIndex int    // 0-based argument under the cursor
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed call before cursor within
// the current expression. Parentheses and commas inside string literals are
// ignored.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))
	prefix := input[:cursor]

	if i := strings.LastIndex(prefix, lexer.DefaultExpressionOpen); i >= 0 {
		prefix = prefix[i+len(lexer.DefaultExpressionOpen):]
	}

	// Stack of open parenthesis offsets, each with its argument count.
	type open struct{ pos, args int }

	var (
		stack []open
		quote byte
	)

	for i := 0; i < len(prefix); i++ {
		c := prefix[i]

		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}

		case c == '"' || c == '\'' || c == '`':
			quote = c

		case c == '(':
			stack = append(stack, open{pos: i})

		case c == ')' && len(stack) > 0:
			stack = stack[:len(stack)-1]

		case c == ',' && len(stack) > 0:
			stack[len(stack)-1].args++
		}
	}

	if len(stack) == 0 {
		return functionCall{}
	}

	top := stack[len(stack)-1]
	start := top.pos

	for start > 0 && isCalleeByte(prefix[start-1]) {
		start--
	}

	name := prefix[start:top.pos]
	if name == "" {
		return functionCall{}
	}

	return functionCall{name: name, argIndex: top.args, inCall: true}
}

func isCalleeByte(c byte) bool {
	return c == '.' || c == '_' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// getSignature retrieves the signature of the function called funcName.
// Function values reachable from the scope take precedence over expr-lang
// builtins. Returns empty string if the function is not found.
func getSignature(
	scope *template.Scope,
	funcName string,
) (signature string, params []string) {
	if sig, params, ok := funcSignature(funcName, lookupMember(scope, funcName)); ok {
		return sig, params
	}

	if builtin, ok := exprLangBuiltins[funcName]; ok {
		return builtin.signature, builtin.params
	}

	return "", nil
}

// lookupMember resolves a dotted path of plain member names without
// evaluating it as an expression.
func lookupMember(scope *template.Scope, path string) any {
	segments := strings.Split(path, ".")

	v, ok := scope.Get(segments[0])

	for _, seg := range segments[1:] {
		if !ok {
			break
		}

		v, ok = resolve.Member(v, seg)
	}

	if !ok {
		return nil
	}

	return v
}

// funcSignature uses reflection to describe fn, which must be a function
// value. Returns (signature, params, true) if fn is a function,
// ("", nil, false) otherwise.
func funcSignature(funcName string, fn any) (string, []string, bool) {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return "", nil, false
	}

	numParams := t.NumIn()
	isVariadic := t.IsVariadic()
	params := make([]string, 0, numParams)

	for i := range numParams {
		if isVariadic && i == numParams-1 {
			params = append(params, "..."+formatTypeName(t.In(i).Elem()))
		} else {
			params = append(params, formatTypeName(t.In(i)))
		}
	}

	return funcName + "(" + strings.Join(params, ", ") + ")", params, true
}

//nolint:gochecknoglobals
var kindName = map[reflect.Kind]string{
	reflect.Bool:    "bool",
	reflect.Int:     "int",
	reflect.Int8:    "int",
	reflect.Int16:   "int",
	reflect.Int32:   "int",
	reflect.Int64:   "int",
	reflect.Uint:    "uint",
	reflect.Uint8:   "uint",
	reflect.Uint16:  "uint",
	reflect.Uint32:  "uint",
	reflect.Uint64:  "uint",
	reflect.Float32: "float",
	reflect.Float64: "float",
	reflect.String:  "string",
	reflect.Slice:   "slice",
	reflect.Map:     "map",
	reflect.Func:    "func",
}

// formatTypeName returns the short parameter name shown for t in a
// signature hint.
func formatTypeName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return formatTypeName(t.Elem())
	}

	if name, ok := kindName[t.Kind()]; ok {
		return name
	}

	if t.Name() != "" {
		return t.Name()
	}

	return "arg"
}

// renderSignatureHint renders signature with the parameter at argIndex
// highlighted. A variadic parameter stays highlighted for every argument
// from its position on.
func renderSignatureHint(signature string, params []string, argIndex int) string {
	if signature == "" {
		return ""
	}

	name, _, ok := strings.Cut(signature, "(")
	if !ok {
		return signatureStyle.Render(signature)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		style := signatureStyle
		if i == argIndex || (strings.HasPrefix(param, "...") && argIndex >= i) {
			style = currentParamStyle
		}

		b.WriteString(style.Render(param))
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
