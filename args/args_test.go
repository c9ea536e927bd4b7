package args

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{name: "empty", raw: "", want: map[string]any{}},
		{name: "blank", raw: "   ", want: map[string]any{}},
		{
			name: "pairs",
			raw:  "items=$users var=u varStatus=s",
			want: map[string]any{"items": "$users", "var": "u", "varStatus": "s"},
		},
		{
			name: "typed",
			raw:  "begin=1 end=-4 ratio=0.5 flag=true",
			want: map[string]any{"begin": 1, "end": -4, "ratio": 0.5, "flag": true},
		},
		{
			name: "quoted_expression",
			raw:  `test="${count > 0}"`,
			want: map[string]any{"test": "${count > 0}"},
		},
		{
			name: "double_quoted_literal",
			raw:  `value="'hello world'"`,
			want: map[string]any{"value": "'hello world'"},
		},
		{
			name: "flow_list",
			raw:  `nums="[1, 2, 3]"`,
			want: map[string]any{"nums": []any{1, 2, 3}},
		},
		{
			name: "varargs",
			raw:  "a 2 c",
			want: map[string]any{VarArgs: []any{"a", 2, "c"}},
		},
		{
			name: "mixed",
			raw:  "x var=v y",
			want: map[string]any{"var": "v", VarArgs: []any{"x", "y"}},
		},
		{
			name: "empty_value",
			raw:  "var=",
			want: map[string]any{"var": ""},
		},
		{
			name: "invalid_key_is_vararg",
			raw:  "a+b=c",
			want: map[string]any{VarArgs: []any{"a+b=c"}},
		},
		{
			name: "value_with_equals",
			raw:  "test=a==b",
			want: map[string]any{"test": "a==b"},
		},
		{
			name: "unterminated_quote",
			raw:  `test="oops`,
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{in: "", want: ""},
		{in: "plain", want: "plain"},
		{in: "$ref", want: "$ref"},
		{in: "'quoted'", want: "'quoted'"},
		{in: "42", want: 42},
		{in: "false", want: false},
		{in: "null", want: "null"},
		{in: "{a: 1}", want: map[string]any{"a": 1}},
	}

	for _, tt := range tests {
		if got := Value(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Value(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
