package template

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/ardnew/stencil/bean"
	"github.com/ardnew/stencil/convert"
)

// kind identifies the handler a command name dispatches to.
type kind int

const (
	kindIf kind = iota
	kindUnless
	kindSet
	kindLoop
)

func (k kind) String() string {
	switch k {
	case kindIf:
		return "if"
	case kindUnless:
		return "unless"
	case kindSet:
		return "set"
	case kindLoop:
		return "loop"
	default:
		return "unknown"
	}
}

// aliases maps every recognized command name to its handler. Names are
// case-sensitive.
//
//nolint:gochecknoglobals
var aliases = map[string]kind{
	"if":     kindIf,
	"unless": kindUnless,

	"set":    kindSet,
	"let":    kindSet,
	"var":    kindSet,
	"define": kindSet,
	"def":    kindSet,
	"assign": kindSet,

	"list":    kindLoop,
	"for":     kindLoop,
	"forEach": kindLoop,
	"foreach": kindLoop,
	"loop":    kindLoop,
	"each":    kindLoop,
}

// Commands returns the sorted names of all recognized commands, aliases
// included.
func Commands() []string {
	return slices.Sorted(maps.Keys(aliases))
}

// Canonical returns the primary name of the command called name.
func Canonical(name string) (string, bool) {
	k, ok := aliases[name]
	if !ok {
		return "", false
	}

	return k.String(), true
}

// arguments lists the named arguments each handler reads.
//
//nolint:gochecknoglobals
var arguments = map[kind][]string{
	kindIf:     {"test", "var"},
	kindUnless: {"test", "var"},
	kindSet:    {"var", "value", "target", "property"},
	kindLoop:   {"items", "var", "varStatus", "begin", "end", "step"},
}

// Arguments returns the names of the arguments read by the command called
// name, or nil if the command is unknown.
func Arguments(name string) []string {
	k, ok := aliases[name]
	if !ok {
		return nil
	}

	return slices.Clone(arguments[k])
}

// Default argument values of the loop command.
const (
	DefaultLoopVar    = "item"
	DefaultLoopStatus = "status"
	DefaultLoopIndex  = "index"
)

// unset marks an integer loop argument that was not given.
const unset = -1

// dispatch runs the handler of the command called name. Unknown commands
// produce no output and their bodies are discarded.
func (in *Interpreter) dispatch(
	ctx context.Context,
	name string,
	p params,
	body []*node,
) error {
	k, ok := aliases[name]
	if !ok {
		in.logger.TraceContext(ctx, "unknown command",
			slog.String("name", name))

		return nil
	}

	in.logger.TraceContext(ctx, "dispatch",
		slog.String("name", name),
		slog.String("kind", k.String()),
		slog.Int("body", len(body)),
	)

	switch k {
	case kindIf:
		return in.handleIf(ctx, p, body, true)
	case kindUnless:
		return in.handleIf(ctx, p, body, false)
	case kindSet:
		in.handleSet(p)

		return nil
	case kindLoop:
		return in.handleLoop(ctx, p, body)
	}

	return nil
}

// handleIf renders body when the test argument converts to want. If a var
// argument is given, the decision is stored in the innermost frame whether
// or not the body renders.
func (in *Interpreter) handleIf(
	ctx context.Context,
	p params,
	body []*node,
	want bool,
) error {
	show := p.Bool("test") == want

	if name := p.String("var", ""); name != "" {
		in.scope.Put(name, show)
	}

	if !show {
		return nil
	}

	return in.walk(ctx, body)
}

// handleSet binds the value argument to var in the innermost frame and, if
// target and property are given, writes it into the target object. The body
// is ignored.
func (in *Interpreter) handleSet(p params) {
	value := p.Expr("value")

	if property := p.String("property", ""); property != "" {
		if target := p.Expr("target"); target != nil {
			bean.Set(target, property, value)
		}
	}

	if name := p.String("var", ""); name != "" {
		in.scope.Put(name, value)
	}
}

// handleLoop renders body once for each selected element of the items
// argument, or of the keyless arguments when items is empty.
//
// One frame and one [LoopStatus] serve every iteration: the element, the
// status and the index are overwritten in place before each pass, so values
// captured from them by reference observe later iterations.
func (in *Interpreter) handleLoop(
	ctx context.Context,
	p params,
	body []*node,
) error {
	src := p.Expr("items")
	if convert.IsEmpty(src) {
		src = p.VarArgs()
	}

	items := convert.ToList(src)

	status := &LoopStatus{Count: len(items)}
	status.Begin = max(p.Int("begin", unset), 0)
	status.End = p.Int("end", unset)

	if status.End < 0 {
		status.End = status.Count
	}

	status.Step = p.Int("step", unset)
	if status.Step <= 0 {
		status.Step = 1
	}

	varName := p.String("var", DefaultLoopVar)
	statusName := p.String("varStatus", DefaultLoopStatus)

	in.logger.TraceContext(ctx, "loop", slog.Any("status", status))

	frame := Frame{statusName: status}
	in.scope.Push(frame)
	defer in.scope.Pop()

	for i, item := range items {
		if i < status.Begin || i >= status.End ||
			(i-status.Begin)%status.Step != 0 {
			continue
		}

		if err := ctx.Err(); err != nil {
			return ErrCanceled.Wrap(err)
		}

		status.Index = i
		frame[varName] = item
		frame[DefaultLoopIndex] = i
		frame[statusName] = status

		if err := in.walk(ctx, body); err != nil {
			return err
		}
	}

	return nil
}
