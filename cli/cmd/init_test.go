package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		force    bool
		existing bool
		wantErr  error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, existing: true},
		{name: "fail_without_force", existing: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.existing {
				err := os.WriteFile(confPath, []byte("existing: true\n"), 0o600)
				if err != nil {
					t.Fatal(err)
				}
			}

			var cli struct {
				Level  string   `default:"info"`
				Caller bool     `default:"false"`
				Tags   []string ``
				Empty  string   ``
			}

			parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
			if err != nil {
				t.Fatal(err)
			}

			ktx, err := parser.Parse([]string{"--caller", "--tags=a,b"})
			if err != nil {
				t.Fatal(err)
			}

			err = (&Init{Force: tt.force}).Run(WithContext(t.Context(), ktx))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrWriteConfig) {
					t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			b, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := yaml.Unmarshal(b, &got); err != nil {
				t.Fatalf("generated config is not valid YAML: %v", err)
			}

			want := map[string]any{
				"level":  "info",
				"caller": true,
				"tags":   []any{"a", "b"},
			}

			if !reflect.DeepEqual(got, want) {
				t.Errorf("config = %#v, want %#v", got, want)
			}
		})
	}
}

func TestConfigValue(t *testing.T) {
	t.Parallel()

	type named string

	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil", in: nil, want: nil},
		{name: "empty_string", in: "", want: nil},
		{name: "string", in: "x", want: "x"},
		{name: "bool", in: false, want: false},
		{name: "int", in: 3, want: 3},
		{name: "empty_slice", in: []string{}, want: nil},
		{name: "slice", in: []string{"a"}, want: []string{"a"}},
		{name: "named", in: named("debug"), want: named("debug")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := configValue(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("configValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
