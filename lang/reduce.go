package lang

// Reduce resolves expr against scope.
//
// A variable's dotted path resolves its first segment through [Scope.Lookup]
// and each further segment through the property capability of the current
// value. When a segment cannot be resolved, resolution stops at the last
// value reached and the remaining segments are ignored.
//
// The result is undefined when the first segment is not bound.
func Reduce(expr Expression, scope *Scope) Value {
	if expr == nil {
		return Undefined()
	}

	return expr.reduce(scope)
}

func (l Literal) reduce(*Scope) Value { return l.Value }

func (v Variable) reduce(scope *Scope) Value {
	path := v.Path()
	if len(path) == 0 {
		return Undefined()
	}

	cur, ok := scope.Lookup(path[0])
	if !ok {
		return Undefined()
	}

	for _, name := range path[1:] {
		next, ok := Property(cur, name)
		if !ok {
			break
		}

		cur = next
	}

	return cur
}

func (a Array) reduce(scope *Scope) Value { return reduceElements(a.Elements, scope) }

func (g Group) reduce(scope *Scope) Value { return reduceElements(g.Values, scope) }

// reduceElements reduces each expression into a list. An element that does
// not resolve stands for its own implicit text.
func reduceElements(exprs []Expression, scope *Scope) Value {
	elems := make([]Value, len(exprs))

	for i, e := range exprs {
		if e == nil {
			elems[i] = Null()

			continue
		}

		v := e.reduce(scope)
		if !v.IsDefined() {
			v = String(e.Implicit())
		}

		elems[i] = v
	}

	return List(elems...)
}

// Property returns the named property of v. Maps resolve their keys; external
// values resolve through [PropertyGetter].
func Property(v Value, name string) (Value, bool) {
	switch v.kind {
	case KindMap:
		p, ok := v.data.(map[string]Value)[name]

		return p, ok && p.IsDefined()

	case KindExternal:
		if pg, ok := v.data.(PropertyGetter); ok {
			p, ok := pg.Property(name)

			return p, ok && p.IsDefined()
		}
	}

	return Undefined(), false
}
