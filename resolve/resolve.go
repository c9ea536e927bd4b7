// Package resolve evaluates the path expressions embedded in templates.
//
// A path is any expression understood by [github.com/expr-lang/expr], with
// its free identifiers bound from a [Getter] (usually the template's variable
// scope). Plain property paths are the common case:
//
//	name
//	user.address.city
//	items[0].price
//
// but operators, literals and builtins work too:
//
//	len(items) > 0
//	'label: ' + user.name
//	status.index + 1
//
// Resolution never fails. A path that does not parse, compile or run yields
// nil, as does a member whose method panics, and [LookupDefault]
// substitutes a caller-supplied default.
package resolve

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// Getter returns the value bound to a top-level identifier.
type Getter interface {
	Get(name string) (any, bool)
}

// Map adapts a plain map to the [Getter] interface.
type Map map[string]any

// Get implements [Getter].
func (m Map) Get(name string) (any, bool) {
	v, ok := m[name]

	return v, ok
}

// Lookup evaluates path against scope and returns the result, or nil if the
// path cannot be evaluated.
func Lookup(scope Getter, path string) any {
	src := Normalize(path)
	if src == "" {
		return nil
	}

	tree, err := parser.Parse(src)
	if err != nil {
		return nil
	}

	env := bind(scope, tree.Node)

	program, err := expr.Compile(src,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil
	}

	return out
}

// LookupDefault is like [Lookup] but returns def when the result is nil.
func LookupDefault(scope Getter, path string, def any) any {
	if v := Lookup(scope, path); v != nil {
		return v
	}

	return def
}

// Normalize strips the decorations a path may carry when written as a
// parameter value or copied from a template: surrounding space, a leading
// "$" and a single pair of enclosing braces.
func Normalize(path string) string {
	s := strings.TrimSpace(path)
	s = strings.TrimPrefix(s, "$")

	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		s = s[1 : len(s)-1]
	}

	return strings.TrimSpace(s)
}

// Identifiers returns the free identifiers referenced by path, in the order
// they first appear. It returns nil if path does not parse.
func Identifiers(path string) []string {
	tree, err := parser.Parse(Normalize(path))
	if err != nil {
		return nil
	}

	c := &collector{seen: make(map[string]bool)}
	ast.Walk(&tree.Node, c)

	return c.names
}

// bind builds the expression environment holding every identifier of node
// that scope knows about.
func bind(scope Getter, node ast.Node) map[string]any {
	c := &collector{seen: make(map[string]bool)}
	ast.Walk(&node, c)

	env := make(map[string]any, len(c.names))

	if scope == nil {
		return env
	}

	for _, name := range c.names {
		if v, ok := scope.Get(name); ok {
			env[name] = v
		}
	}

	return env
}

// collector gathers identifier names from an expression tree.
type collector struct {
	names []string
	seen  map[string]bool
}

// Visit implements ast.Visitor for collector.
func (c *collector) Visit(node *ast.Node) {
	id, ok := (*node).(*ast.IdentifierNode)
	if !ok || c.seen[id.Value] {
		return
	}

	c.seen[id.Value] = true
	c.names = append(c.names, id.Value)
}

// Member returns the member of obj called name: a map entry, an exported
// struct field or the result of a niladic method. Fields and methods are
// matched by name, then by the name with its first letter upper-cased. A
// method that panics leaves the member unresolved.
func Member(obj any, name string) (any, bool) {
	if obj == nil || name == "" {
		return nil, false
	}

	v := reflect.ValueOf(obj)

	if r, ok := method(v, name); ok {
		return r, true
	}

	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}

		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}

		e := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if !e.IsValid() {
			return nil, false
		}

		return e.Interface(), true

	case reflect.Struct:
		for _, n := range candidates(name) {
			f, ok := v.Type().FieldByName(n)
			if ok && f.IsExported() {
				return v.FieldByIndex(f.Index).Interface(), true
			}
		}
	}

	return nil, false
}

// Members returns the names Member can resolve directly on obj: niladic
// methods, string map keys and exported struct fields. A field tagged for
// expressions is listed under its tag name. The order is unspecified.
func Members(obj any) []string {
	v := reflect.ValueOf(obj)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return nil
	}

	var names []string

	for i := range v.NumMethod() {
		if t := v.Method(i).Type(); t.NumIn() == 0 && t.NumOut() > 0 {
			names = append(names, v.Type().Method(i).Name)
		}
	}

	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return names
		}

		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return names
		}

		for _, k := range v.MapKeys() {
			names = append(names, k.String())
		}

	case reflect.Struct:
		for i := range v.NumField() {
			f := v.Type().Field(i)
			if !f.IsExported() {
				continue
			}

			if tag, _, _ := strings.Cut(f.Tag.Get("expr"), ","); tag != "" {
				names = append(names, tag)
			} else {
				names = append(names, f.Name)
			}
		}
	}

	return names
}

func method(v reflect.Value, name string) (any, bool) {
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return nil, false
	}

	for _, n := range candidates(name) {
		m := v.MethodByName(n)
		if !m.IsValid() {
			continue
		}

		t := m.Type()
		if t.NumIn() != 0 || t.NumOut() == 0 {
			continue
		}

		return call(m)
	}

	return nil, false
}

// call invokes the niladic method m. A method that panics is unresolved.
func call(m reflect.Value) (out any, ok bool) {
	defer func() {
		if recover() != nil {
			out, ok = nil, false
		}
	}()

	return m.Call(nil)[0].Interface(), true
}

func candidates(name string) []string {
	r, n := utf8.DecodeRuneInString(name)

	up := string(unicode.ToUpper(r)) + name[n:]
	if up == name {
		return []string{name}
	}

	return []string{name, up}
}
