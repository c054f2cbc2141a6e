package lang

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestValueOf_Kinds(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input any
		want  Kind
	}{
		{name: "nil", input: nil, want: KindNull},
		{name: "bool", input: true, want: KindBool},
		{name: "int", input: 42, want: KindInt},
		{name: "uint64", input: uint64(7), want: KindInt},
		{name: "huge uint64", input: uint64(math.MaxUint64), want: KindFloat},
		{name: "float", input: 3.5, want: KindFloat},
		{name: "string", input: "hello", want: KindString},
		{name: "time", input: when, want: KindTime},
		{name: "slice", input: []any{1, "a"}, want: KindList},
		{name: "typed slice", input: []int{1, 2}, want: KindList},
		{name: "map", input: map[string]any{"a": 1}, want: KindMap},
		{name: "int-keyed map", input: map[int]string{1: "a"}, want: KindMap},
		{name: "raw", input: RawHTML("<b>"), want: KindRaw},
		{
			name: "func",
			input: func(context.Context, Value, *Scope) (Value, error) {
				return Null(), nil
			},
			want: KindCallable,
		},
		{name: "struct", input: struct{ A int }{1}, want: KindExternal},
		{name: "value", input: Int(1), want: KindInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValueOf(tt.input).Kind(); got != tt.want {
				t.Errorf("kind mismatch: want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		name  string
		input Value
		want  string
	}{
		{name: "undefined", input: Undefined(), want: ""},
		{name: "null", input: Null(), want: ""},
		{name: "bool", input: Bool(false), want: "false"},
		{name: "int", input: Int(42), want: "42"},
		{name: "float", input: Float(3.25), want: "3.25"},
		{name: "string", input: String("x"), want: "x"},
		{
			name:  "time",
			input: Time(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
			want:  "2024-03-01T00:00:00Z",
		},
		{name: "list", input: List(Int(1), String("b")), want: "1,b"},
		{
			name:  "map sorted by key",
			input: Map(map[string]Value{"b": Int(2), "a": Int(1)}),
			want:  "1,2",
		},
		{name: "raw", input: Raw("<i>x</i>"), want: "<i>x</i>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.String(); got != tt.want {
				t.Errorf("string mismatch:\nwant: %q\ngot:  %q", tt.want, got)
			}
		})
	}
}

func TestValue_UndefinedIsNotNull(t *testing.T) {
	if Undefined().IsDefined() {
		t.Error("undefined value reports defined")
	}

	if !Null().IsDefined() {
		t.Error("null value reports undefined")
	}

	var zero Value
	if zero.IsDefined() {
		t.Error("zero value reports defined")
	}
}

func TestValue_Native(t *testing.T) {
	input := map[string]any{
		"title": "Post",
		"tags":  []any{"go", "web"},
		"meta":  map[string]any{"views": int64(3)},
		"none":  nil,
	}

	got := ValueOf(input).Native()

	if diff := cmp.Diff(input, got); diff != "" {
		t.Errorf("native mismatch (-want +got):\n%s", diff)
	}
}

func TestValue_Accessors(t *testing.T) {
	if _, ok := String("1").AsInt(); ok {
		t.Error("string reported as int")
	}

	if f, ok := Int(2).AsFloat(); !ok || f != 2 {
		t.Errorf("int as float: got %v, %v", f, ok)
	}

	if _, ok := Float(2).AsInt(); ok {
		t.Error("float reported as int")
	}

	if Int(1).External() != nil {
		t.Error("non-external value unwrapped")
	}
}
