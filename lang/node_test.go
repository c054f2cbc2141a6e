package lang

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"
)

func render(t *testing.T, node Node, scope *Scope) string {
	t.Helper()

	var sb strings.Builder
	if err := node.Render(t.Context(), &sb, scope); err != nil {
		t.Fatalf("render error: %v", err)
	}

	return sb.String()
}

func TestSubstitution_Render(t *testing.T) {
	scope := NewScope(map[string]Value{
		"title": String("Hello"),
		"price": Float(3.5),
		"key":   String("title"),
		"lang":  String("de"),
	})

	tests := []struct {
		name string
		node *Substitution
		want string
	}{
		{name: "variable", node: &Substitution{Expr: Var("title")}, want: "Hello"},
		{
			name: "format parameter",
			node: &Substitution{Expr: Var("price"), Param: Var("F2")},
			want: "3,50",
		},
		{name: "fallback", node: &Substitution{Expr: Var("missing")}, want: "missing"},
		{
			name: "group fallback",
			node: &Substitution{Expr: GroupOf(Var("a"), Var("b"))},
			want: "a b",
		},
		{
			name: "indirect",
			node: &Substitution{Expr: Var("key"), Indirect: true},
			want: "Hello",
		},
		{
			name: "indirect missing key",
			node: &Substitution{Expr: Var("nokey"), Indirect: true},
			want: "<!-- unresolved: @nokey -->",
		},
		{
			name: "indirect missing target",
			node: &Substitution{Expr: Lit("absent"), Indirect: true},
			want: "<!-- unresolved: @absent -->",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, tt.node, scope); got != tt.want {
				t.Errorf("render mismatch:\nwant: %q\ngot:  %q", tt.want, got)
			}
		})
	}
}

func TestIteration_Render(t *testing.T) {
	scope := NewScope(map[string]Value{
		"letters": List(String("a"), String("b"), String("c")),
	})

	node := &Iteration{
		Seq: Var("letters"),
		Body: []Node{
			&Text{Content: "("},
			&Substitution{Expr: Var("item.index")},
			&Text{Content: ","},
			&Substitution{Expr: Var("item.count")},
			&Text{Content: ","},
			&Substitution{Expr: Var("item")},
			&Text{Content: ")"},
		},
	}

	want := "(0,3,a)(1,3,b)(2,3,c)"
	if got := render(t, node, scope); got != want {
		t.Errorf("render mismatch:\nwant: %q\ngot:  %q", want, got)
	}

	if _, ok := scope.Lookup(DefaultItemName); ok {
		t.Error("loop binding leaked into enclosing scope")
	}
}

func TestIteration_NamedAndNested(t *testing.T) {
	scope := ScopeOf(map[string]any{
		"posts": []any{
			map[string]any{"title": "One", "tags": []any{"x", "y"}},
			map[string]any{"title": "Two", "tags": []any{"z"}},
		},
	})

	node := &Iteration{
		Seq:  Var("posts"),
		Name: "post",
		Body: []Node{
			&Substitution{Expr: Var("post.value.title")},
			&Text{Content: ":"},
			&Iteration{
				Seq:  Var("post.value.tags"),
				Name: "tag",
				Body: []Node{&Substitution{Expr: Var("tag")}},
			},
			&Text{Content: ";"},
		},
	}

	want := "One:xy;Two:z;"
	if got := render(t, node, scope); got != want {
		t.Errorf("render mismatch:\nwant: %q\ngot:  %q", want, got)
	}
}

func TestIteration_Fallback(t *testing.T) {
	scope := NewScope(map[string]Value{"word": String("abc")})

	tests := []struct {
		name string
		seq  Expression
		want string
	}{
		{name: "missing renders nothing", seq: Var("missing"), want: ""},
		{name: "string renders once", seq: Var("word"), want: "[abc]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &Iteration{
				Seq: tt.seq,
				Body: []Node{
					&Text{Content: "["},
					&Substitution{Expr: Var("item")},
					&Text{Content: "]"},
				},
			}

			if got := render(t, node, scope); got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIteration_MapPairs(t *testing.T) {
	scope := ScopeOf(map[string]any{
		"authors": map[string]any{"bob": "Bob B.", "ada": "Ada L."},
	})

	node := &Iteration{
		Seq:  Var("authors"),
		Name: "a",
		Body: []Node{
			&Substitution{Expr: Var("a.value.key")},
			&Text{Content: "="},
			&Substitution{Expr: Var("a.value.value")},
			&Text{Content: " "},
		},
	}

	want := "ada=Ada L. bob=Bob B. "
	if got := render(t, node, scope); got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestRoot_Entry(t *testing.T) {
	root := &Root{Identity: "layouts/base.html"}
	scope := NewScope(map[string]Value{"self": External(root)})

	tests := []struct {
		expr string
		want string
	}{
		{expr: "self", want: "layouts/base.html"},
		{expr: "self.name", want: "layouts/base.html"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := render(t, &Substitution{Expr: Var(tt.expr)}, scope)
			if got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

type failingWriter struct{}

func (failingWriter) WriteString(string) (int, error) { return 0, errors.New("disk full") }

func TestText_WriteError(t *testing.T) {
	err := (&Text{Content: "x"}).Render(t.Context(), failingWriter{}, NewScope(nil))
	if !errors.Is(err, ErrWriteOutput) {
		t.Errorf("want ErrWriteOutput, got %v", err)
	}
}

func TestNode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var sb strings.Builder

	root := &Root{Body: []Node{&Text{Content: "never"}}}

	err := root.Render(ctx, &sb, NewScope(nil))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}

	if sb.Len() != 0 {
		t.Errorf("cancelled render wrote %q", sb.String())
	}
}

func TestNode_String(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{node: &Text{Content: "a"}, want: `text "a"`},
		{node: &Substitution{Expr: Var("x"), Param: Lit("F2")}, want: `{x | "F2"}`},
		{node: &Substitution{Expr: Var("k"), Indirect: true}, want: "{@k}"},
		{node: &Iteration{Seq: Var("xs")}, want: "each xs as item (0 nodes)"},
		{node: &Root{Identity: "r"}, want: `root "r" (0 nodes)`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.node.String(); got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSubstitution_RejectedSpecifier(t *testing.T) {
	scope := NewScope(map[string]Value{"n": Int(5)})

	tests := []struct {
		name string
		node *Substitution
		want string
	}{
		{name: "direct", node: &Substitution{Expr: Var("n"), Param: Lit("Q")}, want: "n"},
		{name: "bare specifier", node: &Substitution{Expr: Var("n"), Param: Var("Q")}, want: "n"},
		{
			name: "indirect",
			node: &Substitution{Expr: Lit("n"), Param: Lit("Q"), Indirect: true},
			want: "<!-- unresolved: @n -->",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, tt.node, scope); got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSubstitution_RawWithoutTemplate(t *testing.T) {
	scope := NewScope(map[string]Value{
		"html": Raw("<b>x</b>"),
		"text": String("<b>x</b>"),
		"both": List(Raw("<i>"), String("&")),
	}, WithEscaper(EscapeHTML))

	tests := []struct {
		expr string
		want string
	}{
		{expr: "html", want: "<b>x</b>"},
		{expr: "text", want: "&lt;b&gt;x&lt;/b&gt;"},
		{expr: "both", want: "&lt;i&gt;,&amp;"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			root := &Root{Identity: "page", Body: []Node{&Substitution{Expr: Var(tt.expr)}}}

			if got := render(t, root, scope); got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

// onceSeq yields its values on the first call to All only, like a sequence
// wrapping a single-use iterator.
type onceSeq struct {
	values []Value
	used   bool
}

func (s *onceSeq) All() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		if s.used {
			return
		}

		s.used = true

		for _, v := range s.values {
			if !yield(v) {
				return
			}
		}
	}
}

func TestIteration_SingleUseSequence(t *testing.T) {
	scope := NewScope(map[string]Value{
		"seq": External(&onceSeq{values: []Value{String("a"), String("b")}}),
	})

	node := &Iteration{
		Seq: Var("seq"),
		Body: []Node{
			&Substitution{Expr: Var("item")},
			&Text{Content: "/"},
			&Substitution{Expr: Var("item.count")},
			&Text{Content: ";"},
		},
	}

	want := "a/2;b/2;"
	if got := render(t, node, scope); got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}
