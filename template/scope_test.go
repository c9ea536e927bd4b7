package template

import (
	"slices"
	"testing"
)

func TestScope_PushPop(t *testing.T) {
	s := NewScope()

	s.Put("x", 1)
	s.Push(Frame{"x": 2})

	if v, _ := s.Get("x"); v != 2 {
		t.Errorf("Get(x) = %v, want 2 (innermost)", v)
	}

	s.Put("y", 3)
	s.Pop()

	if v, _ := s.Get("x"); v != 1 {
		t.Errorf("Get(x) = %v, want 1 after Pop", v)
	}

	if _, ok := s.Get("y"); ok {
		t.Error("Get(y) found a variable from a popped frame")
	}

	s.Pop()
	s.Pop()

	if s.Depth() != 1 {
		t.Errorf("Depth() = %d, want base frame only", s.Depth())
	}

	if v, _ := s.Get("x"); v != 1 {
		t.Errorf("Get(x) = %v, want base frame to survive Pop", v)
	}
}

func TestScope_NilBinding(t *testing.T) {
	s := NewScope(map[string]any{"x": "root"})
	s.Push(Frame{"x": nil})

	v, ok := s.Get("x")
	if !ok || v != nil {
		t.Errorf("Get(x) = %v, %v; want frame binding of nil to shadow root", v, ok)
	}
}

func TestScope_Roots(t *testing.T) {
	s := NewScope(
		map[string]any{"a": 1},
		&person{Name: "p", Age: 9},
		map[string]int{"a": 2, "b": 3},
	)

	tests := []struct {
		name string
		want any
		ok   bool
	}{
		{name: "a", want: 1, ok: true},
		{name: "Name", want: "p", ok: true},
		{name: "age", want: 9, ok: true},
		{name: "b", want: 3, ok: true},
		{name: "c", ok: false},
	}

	for _, tt := range tests {
		v, ok := s.Get(tt.name)
		if ok != tt.ok || v != tt.want {
			t.Errorf("Get(%q) = %v, %v; want %v, %v", tt.name, v, ok, tt.want, tt.ok)
		}
	}
}

func TestScope_Lookup(t *testing.T) {
	s := NewScope(map[string]any{"user": &person{Name: "Q"}})
	s.Push(Frame{"n": 4})

	if got := s.Lookup("user.Name"); got != "Q" {
		t.Errorf("Lookup(user.Name) = %v", got)
	}

	if got := s.Lookup("$n * 2"); got != 8 {
		t.Errorf("Lookup($n * 2) = %v", got)
	}

	if got := s.LookupDefault("missing", "d"); got != "d" {
		t.Errorf("LookupDefault() = %v", got)
	}
}

func TestScope_Names(t *testing.T) {
	s := NewScope(map[string]any{"b": 1, "a": 2}, person{})
	s.Put("z", 0)
	s.Push(Frame{"a": 3})

	got := s.Names()
	want := []string{"Age", "Name", "a", "b", "z"}

	if !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
