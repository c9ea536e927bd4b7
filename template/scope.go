package template

import (
	"slices"

	"github.com/ardnew/stencil/resolve"
)

// Frame is one layer of variables in a [Scope].
type Frame map[string]any

// Scope is a stack of variable frames over a fixed list of root objects.
//
// The base frame is created with the Scope and is never popped; it holds the
// variables assigned outside of any command that pushes a frame.
type Scope struct {
	frames []Frame
	roots  []any
}

// NewScope returns a Scope with an empty base frame over roots.
func NewScope(roots ...any) *Scope {
	return &Scope{
		frames: []Frame{{}},
		roots:  roots,
	}
}

// Push adds f as the innermost frame.
func (s *Scope) Push(f Frame) {
	if f == nil {
		f = Frame{}
	}

	s.frames = append(s.frames, f)
}

// Pop removes the innermost frame. The base frame is never removed.
func (s *Scope) Pop() {
	if len(s.frames) > 1 {
		s.frames[len(s.frames)-1] = nil
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Depth returns the number of frames, including the base frame.
func (s *Scope) Depth() int { return len(s.frames) }

// Put binds name to v in the innermost frame.
func (s *Scope) Put(name string, v any) {
	s.frames[len(s.frames)-1][name] = v
}

// Get returns the value bound to name, searching frames from innermost to
// outermost and then the members of each root object in order.
func (s *Scope) Get(name string) (any, bool) {
	for _, f := range slices.Backward(s.frames) {
		if v, ok := f[name]; ok {
			return v, true
		}
	}

	for _, root := range s.roots {
		if v, ok := resolve.Member(root, name); ok {
			return v, true
		}
	}

	return nil, false
}

// Lookup evaluates path against the scope. It returns nil if the path cannot
// be resolved.
func (s *Scope) Lookup(path string) any {
	return resolve.Lookup(s, path)
}

// LookupDefault is like Lookup but returns def when the result is nil.
func (s *Scope) LookupDefault(path string, def any) any {
	return resolve.LookupDefault(s, path, def)
}

// Names returns the sorted, de-duplicated names visible in the scope: frame
// variables, root map keys and exported root struct fields.
func (s *Scope) Names() []string {
	var names []string

	for _, f := range s.frames {
		for k := range f {
			names = append(names, k)
		}
	}

	for _, root := range s.roots {
		names = append(names, resolve.Members(root)...)
	}

	slices.Sort(names)

	return slices.Compact(names)
}
