package lang

import (
	"context"
	"iter"

	"golang.org/x/text/language"
)

// ImplicitValuer is implemented by values that stand for some other value
// when they are formatted directly. Resolving the implicit value may block,
// so it observes ctx.
type ImplicitValuer interface {
	ImplicitValue(ctx context.Context) (Value, error)
}

// PropertyGetter is implemented by values whose named properties can be
// reached through dotted paths. Lookup never blocks.
type PropertyGetter interface {
	Property(name string) (Value, bool)
}

// Entry is a metadata entry supporting both capabilities.
type Entry interface {
	ImplicitValuer
	PropertyGetter
}

// Formatter is implemented by external values that accept a format
// specifier.
type Formatter interface {
	FormatValue(spec string, tag language.Tag) (string, error)
}

// Sequence is implemented by external values that enumerate as collections.
type Sequence interface {
	All() iter.Seq[Value]
}

// Counter is optionally implemented by a [Sequence] that knows its length
// without being consumed.
type Counter interface {
	Len() int
}

// Callable is a deferred function value. Invoke receives the substitution's
// format parameter and the scope it is evaluated in.
//
// Returning an undefined [Value] reports not-found. Returning an error is a
// hard failure that aborts the render.
type Callable interface {
	Invoke(ctx context.Context, param Value, scope *Scope) (Value, error)
}

// CallableFunc adapts an ordinary function to [Callable].
type CallableFunc func(ctx context.Context, param Value, scope *Scope) (Value, error)

// Invoke calls f(ctx, param, scope).
func (f CallableFunc) Invoke(
	ctx context.Context,
	param Value,
	scope *Scope,
) (Value, error) {
	return f(ctx, param, scope)
}

// Iterator is the entry bound to the loop variable of an [Iteration] for a
// single element.
type Iterator struct {
	Index int
	Count int
	Value Value
}

// ImplicitValue returns the current element.
func (it *Iterator) ImplicitValue(context.Context) (Value, error) {
	return it.Value, nil
}

// Property resolves index, count, value, first, and last.
func (it *Iterator) Property(name string) (Value, bool) {
	switch name {
	case "index":
		return Int(int64(it.Index)), true
	case "count":
		return Int(int64(it.Count)), true
	case "value":
		return it.Value, true
	case "first":
		return Bool(it.Index == 0), true
	case "last":
		return Bool(it.Count > 0 && it.Index == it.Count-1), true
	default:
		return Undefined(), false
	}
}

// Pair is a key/value entry produced by enumerating a map.
type Pair struct {
	Key   string
	Value Value
}

// ImplicitValue returns the pair's value.
func (p Pair) ImplicitValue(context.Context) (Value, error) {
	return p.Value, nil
}

// Property resolves key and value.
func (p Pair) Property(name string) (Value, bool) {
	switch name {
	case "key":
		return String(p.Key), true
	case "value":
		return p.Value, true
	default:
		return Undefined(), false
	}
}

func (p Pair) String() string { return p.Key + "=" + p.Value.String() }
