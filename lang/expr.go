package lang

import (
	"strconv"
	"strings"
)

// Expression is an immutable, context-free expression. It is one of
// [Literal], [Variable], [Array], or [Group].
type Expression interface {
	// Implicit returns the text the expression stands for when it cannot be
	// resolved.
	Implicit() string

	// String returns the printed form of the expression.
	String() string

	reduce(scope *Scope) Value
}

// Literal is a constant value.
type Literal struct {
	Value Value
}

// Variable is a dotted path naming a value in the scope.
type Variable struct {
	Name string
}

// Array is a comma-separated list of expressions.
type Array struct {
	Elements []Expression
}

// Group is a space-separated list of expressions, typically the parameter
// list of a callable.
type Group struct {
	Values []Expression
}

// Lit returns a [Literal] holding [ValueOf](x).
func Lit(x any) Literal { return Literal{Value: ValueOf(x)} }

// Var returns a [Variable] for the given dotted path.
func Var(name string) Variable { return Variable{Name: name} }

// ArrayOf returns an [Array] of the given elements.
func ArrayOf(elems ...Expression) Array { return Array{Elements: elems} }

// GroupOf returns a [Group] of the given values.
func GroupOf(values ...Expression) Group { return Group{Values: values} }

func (l Literal) Implicit() string { return l.Value.String() }

func (l Literal) String() string {
	if s, ok := l.Value.AsString(); ok {
		return strconv.Quote(s)
	}

	return l.Value.String()
}

func (v Variable) Implicit() string { return v.Name }

func (v Variable) String() string { return v.Name }

// Path returns the non-empty segments of the dotted path.
func (v Variable) Path() []string {
	segs := strings.Split(v.Name, ".")
	out := segs[:0]

	for _, s := range segs {
		if s != "" {
			out = append(out, s)
		}
	}

	return out
}

func (a Array) Implicit() string { return joinExprs(a.Elements, ",", Expression.Implicit) }

func (a Array) String() string {
	return "[" + joinExprs(a.Elements, ", ", Expression.String) + "]"
}

func (g Group) Implicit() string { return joinExprs(g.Values, " ", Expression.Implicit) }

func (g Group) String() string {
	return "(" + joinExprs(g.Values, " ", Expression.String) + ")"
}

func joinExprs(
	exprs []Expression,
	sep string,
	text func(Expression) string,
) string {
	var sb strings.Builder

	for i, e := range exprs {
		if i > 0 {
			sb.WriteString(sep)
		}

		if e != nil {
			sb.WriteString(text(e))
		}
	}

	return sb.String()
}
