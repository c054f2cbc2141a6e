package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestScope_LookupAbsent(t *testing.T) {
	root := NewScope(nil)

	if v, ok := root.Lookup("missing"); ok || v.IsDefined() {
		t.Errorf("lookup of absent name: got %v, %v", v, ok)
	}
}

func TestScope_NullIsPresent(t *testing.T) {
	root := NewScope(map[string]Value{"empty": Null()})

	v, ok := root.Lookup("empty")
	if !ok {
		t.Fatal("null binding reported absent")
	}

	if !v.IsNull() {
		t.Errorf("want null, got %v", v.Kind())
	}
}

func TestScope_SpawnIsolation(t *testing.T) {
	root := NewScope(map[string]Value{"x": Int(1)})

	child := root.Spawn()
	child.Set("x", Int(2))
	child.Set("y", Int(3))

	if v, _ := child.Lookup("x"); v.String() != "2" {
		t.Errorf("child shadow: want 2, got %v", v)
	}

	if v, _ := root.Lookup("x"); v.String() != "1" {
		t.Errorf("parent mutated: want 1, got %v", v)
	}

	if _, ok := root.Lookup("y"); ok {
		t.Error("child binding leaked into parent")
	}

	child.Release()

	if v, _ := root.Lookup("x"); v.String() != "1" {
		t.Errorf("parent after release: want 1, got %v", v)
	}
}

func TestScope_InheritsFromAncestors(t *testing.T) {
	root := NewScope(map[string]Value{"site": String("blog")})
	mid := root.Spawn()
	leaf := mid.Spawn()

	v, ok := leaf.Lookup("site")
	if !ok || v.String() != "blog" {
		t.Errorf("ancestor lookup: got %v, %v", v, ok)
	}
}

func TestScope_ReleasedPanics(t *testing.T) {
	tests := []struct {
		name string
		use  func(*Scope)
	}{
		{name: "set", use: func(s *Scope) { s.Set("x", Int(1)) }},
		{name: "spawn", use: func(s *Scope) { s.Spawn() }},
		{name: "lookup", use: func(s *Scope) { s.Lookup("x") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child := NewScope(nil).Spawn()
			child.Release()

			defer func() {
				r := recover()

				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrScopeReleased) {
					t.Errorf("want ErrScopeReleased panic, got %v", r)
				}
			}()

			tt.use(child)
		})
	}
}

func TestScope_SlotReuse(t *testing.T) {
	root := NewScope(nil)

	first := root.Spawn()
	first.Set("a", Int(1))
	first.Release()

	second := root.Spawn()

	if _, ok := second.Lookup("a"); ok {
		t.Error("reused slot kept stale binding")
	}

	if !first.Released() {
		t.Error("stale handle reports live after slot reuse")
	}

	second.Release()
	first.Release()
}

func TestScope_Names(t *testing.T) {
	root := NewScope(map[string]Value{"b": Int(1), "a": Int(2)})
	child := root.Spawn()
	child.Set("c", Int(3))
	child.Set("a", Int(4))

	want := []string{"a", "b", "c"}
	if got := child.Names(); !slices.Equal(got, want) {
		t.Errorf("names: want %v, got %v", want, got)
	}

	if v := child.Bindings()["a"]; v.String() != "4" {
		t.Errorf("bindings shadow: want 4, got %v", v)
	}
}

func TestScopeOf_Metadata(t *testing.T) {
	root := ScopeOf(map[string]any{
		"page": map[string]any{"title": "Hello"},
	})

	v := Reduce(Var("page.title"), root)
	if v.String() != "Hello" {
		t.Errorf("want Hello, got %q", v.String())
	}
}
