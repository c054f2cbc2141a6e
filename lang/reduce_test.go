package lang

import (
	"iter"
	"slices"
	"testing"
)

type person struct {
	name string
}

func (p *person) Property(name string) (Value, bool) {
	if name == "name" {
		return String(p.name), true
	}

	return Undefined(), false
}

func TestReduce_Paths(t *testing.T) {
	scope := NewScope(map[string]Value{
		"site": ValueOf(map[string]any{
			"title":  "Notes",
			"author": map[string]any{"name": "Ada"},
		}),
		"owner": External(&person{name: "Grace"}),
		"n":     Int(5),
	})

	tests := []struct {
		name    string
		expr    Expression
		want    string
		defined bool
	}{
		{name: "single segment", expr: Var("n"), want: "5", defined: true},
		{name: "map key", expr: Var("site.title"), want: "Notes", defined: true},
		{name: "nested map", expr: Var("site.author.name"), want: "Ada", defined: true},
		{name: "property getter", expr: Var("owner.name"), want: "Grace", defined: true},
		{name: "empty segments", expr: Var(".site..title."), want: "Notes", defined: true},
		{name: "absent root", expr: Var("missing.title"), defined: false},
		{name: "empty path", expr: Var(""), defined: false},
		{name: "literal", expr: Lit("x"), want: "x", defined: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Reduce(tt.expr, scope)

			if v.IsDefined() != tt.defined {
				t.Fatalf("defined: want %v, got %v", tt.defined, v.IsDefined())
			}

			if tt.defined && v.String() != tt.want {
				t.Errorf("reduce mismatch:\nwant: %q\ngot:  %q", tt.want, v.String())
			}
		})
	}
}

func TestReduce_PartialResolution(t *testing.T) {
	scope := NewScope(map[string]Value{
		"n":    Int(5),
		"site": ValueOf(map[string]any{"title": "Notes"}),
	})

	// Trailing segments that do not resolve are dropped.
	if v := Reduce(Var("n.missing.deeper"), scope); v.String() != "5" {
		t.Errorf("want 5, got %q", v.String())
	}

	v := Reduce(Var("site.missing"), scope)
	if v.Kind() != KindMap {
		t.Errorf("want the map itself, got %v", v.Kind())
	}
}

func TestReduce_GroupDegradesToText(t *testing.T) {
	scope := NewScope(map[string]Value{"width": Int(640)})

	v := Reduce(GroupOf(Var("https://example.com"), Var("width"), Lit(2)), scope)

	elems, ok := v.AsList()
	if !ok {
		t.Fatalf("want list, got %v", v.Kind())
	}

	got := make([]string, len(elems))
	for i, e := range elems {
		got[i] = e.String()
	}

	want := []string{"https://example.com", "640", "2"}
	if !slices.Equal(got, want) {
		t.Errorf("group: want %v, got %v", want, got)
	}
}

func TestExpression_Text(t *testing.T) {
	tests := []struct {
		name     string
		expr     Expression
		implicit string
		printed  string
	}{
		{name: "literal string", expr: Lit("a b"), implicit: "a b", printed: `"a b"`},
		{name: "literal number", expr: Lit(42), implicit: "42", printed: "42"},
		{name: "variable", expr: Var("page.title"), implicit: "page.title", printed: "page.title"},
		{
			name:     "array",
			expr:     ArrayOf(Var("a"), Lit(1)),
			implicit: "a,1",
			printed:  "[a, 1]",
		},
		{
			name:     "group",
			expr:     GroupOf(Var("a"), Lit("b")),
			implicit: "a b",
			printed:  `(a "b")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.Implicit(); got != tt.implicit {
				t.Errorf("implicit: want %q, got %q", tt.implicit, got)
			}

			if got := tt.expr.String(); got != tt.printed {
				t.Errorf("printed: want %q, got %q", tt.printed, got)
			}
		})
	}
}

func TestEnumerate(t *testing.T) {
	tests := []struct {
		name  string
		input Value
		want  []string
	}{
		{name: "undefined", input: Undefined(), want: nil},
		{name: "string is atomic", input: String("abc"), want: []string{"abc"}},
		{name: "list", input: List(Int(1), Int(2)), want: []string{"1", "2"}},
		{
			name:  "map pairs",
			input: Map(map[string]Value{"b": Int(2), "a": Int(1)}),
			want:  []string{"a=1", "b=2"},
		},
		{name: "scalar", input: Int(9), want: []string{"9"}},
		{name: "null", input: Null(), want: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for v := range Enumerate(tt.input) {
				got = append(got, v.String())
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("enumerate: want %v, got %v", tt.want, got)
			}

			if n := Count(tt.input); n != len(tt.want) {
				t.Errorf("count: want %d, got %d", len(tt.want), n)
			}
		})
	}
}

type countdown int

func (c countdown) All() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for i := int(c); i > 0; i-- {
			if !yield(Int(int64(i))) {
				return
			}
		}
	}
}

func TestEnumerate_Sequence(t *testing.T) {
	v := External(countdown(3))

	if n := Count(v); n != 3 {
		t.Errorf("count: want 3, got %d", n)
	}

	text, ok, err := Format(t.Context(), v, Undefined(), NewScope(nil))
	if err != nil || !ok {
		t.Fatalf("format: %v, %v", ok, err)
	}

	if text != "3,2,1" {
		t.Errorf("want 3,2,1, got %q", text)
	}
}
