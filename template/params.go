package template

import (
	"strings"

	"github.com/ardnew/stencil/args"
	"github.com/ardnew/stencil/convert"
)

// params resolves the arguments of one command invocation.
type params struct {
	raw   map[string]any
	scope *Scope
}

// value returns the argument called name. A string beginning with "$" is
// replaced by the result of looking it up in the scope.
func (p params) value(name string) (any, bool) {
	v, ok := p.raw[name]
	if !ok || v == nil {
		return nil, false
	}

	if s, isStr := v.(string); isStr && strings.HasPrefix(s, "$") {
		v = p.scope.Lookup(s)
	}

	return v, v != nil
}

// String returns the argument called name as a string, or def if it is
// absent or empty.
func (p params) String(name, def string) string {
	v, ok := p.value(name)
	if !ok {
		return def
	}

	if s := convert.ToString(v); s != "" {
		return s
	}

	return def
}

// Int returns the argument called name as an int, or def if it is absent or
// not numeric.
func (p params) Int(name string, def int) int {
	v, ok := p.value(name)
	if !ok {
		return def
	}

	return convert.ToInt(v, def)
}

// Bool returns the argument called name as a bool, or false if it is absent.
func (p params) Bool(name string) bool {
	v, _ := p.value(name)

	return convert.ToBool(v)
}

// Expr evaluates the argument called name as an expression. Arguments that
// were decoded to a non-string value are returned unchanged.
func (p params) Expr(name string) any {
	v, ok := p.raw[name]
	if !ok || v == nil {
		return nil
	}

	if s, isStr := v.(string); isStr {
		if strings.TrimSpace(s) == "" {
			return nil
		}

		return p.scope.Lookup(s)
	}

	return v
}

// VarArgs returns the keyless arguments.
func (p params) VarArgs() []any {
	v, _ := p.raw[args.VarArgs].([]any)

	return v
}
