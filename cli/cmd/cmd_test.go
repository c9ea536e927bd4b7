package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/alecthomas/kong"
)

func TestUniquePaths(t *testing.T) {
	dir := t.TempDir()

	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	link := filepath.Join(dir, "link.yaml")
	missing := filepath.Join(dir, "missing.yaml")

	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("k: v\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	if err := os.Symlink(a, link); err != nil {
		t.Fatal(err)
	}

	rel, err := filepath.Rel(mustGetwd(t), a)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "empty", in: nil, want: nil},
		{name: "distinct", in: []string{a, b}, want: []string{a, b}},
		{name: "repeated", in: []string{a, b, a}, want: []string{a, b}},
		{name: "symlink", in: []string{link, a}, want: []string{link}},
		{name: "relative", in: []string{a, rel}, want: []string{a}},
		{name: "missing_kept", in: []string{missing, a, missing}, want: []string{missing, a, missing}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := uniquePaths(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("uniquePaths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func mustGetwd(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	return wd
}

func TestOpenSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.txt")
	if err := os.WriteFile(path, []byte("body"), 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := openSource(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}

	if string(b) != "body" {
		t.Errorf("openSource() read %q, want %q", b, "body")
	}

	if _, err := openSource(filepath.Join(t.TempDir(), "none")); err == nil {
		t.Error("openSource() on a missing file returned no error")
	}
}

func TestStdout(t *testing.T) {
	if w := stdout(context.Background()); w != os.Stdout {
		t.Errorf("stdout() without kong context = %v, want os.Stdout", w)
	}

	var buf bytes.Buffer

	ktx := testKongContext(t, &buf)

	if w := stdout(WithContext(t.Context(), ktx)); w != &buf {
		t.Errorf("stdout() = %v, want kong writer", w)
	}
}

// testKongContext returns a parsed kong context writing to w.
func testKongContext(t *testing.T, w io.Writer) *kong.Context {
	t.Helper()

	var cli struct{}

	parser, err := kong.New(&cli, kong.Writers(w, w))
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(nil)
	if err != nil {
		t.Fatal(err)
	}

	return ktx
}
