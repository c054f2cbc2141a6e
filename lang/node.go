package lang

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Node is an immutable unit of a document tree.
//
// Render writes the node's output to w. A node never mutates itself, so one
// tree may be rendered repeatedly and concurrently against distinct scopes.
type Node interface {
	Render(ctx context.Context, w io.StringWriter, scope *Scope) error
	fmt.Stringer
}

// Text is literal output.
type Text struct {
	Content string
}

// Substitution replaces itself with a formatted value.
type Substitution struct {
	// Expr selects the value. With Indirect set, Expr instead selects the
	// name of the binding whose value is emitted.
	Expr Expression

	// Param is the optional format parameter.
	Param Expression

	Indirect bool
}

// Iteration renders Body once per element of Seq.
type Iteration struct {
	Seq  Expression
	Name string
	Body []Node
}

// Root is a named unit of output such as a layout, page, or partial. It is
// also an [Entry]: its implicit value and its name property are its
// identity.
type Root struct {
	Identity string
	Body     []Node
}

// unresolvedMarker is emitted in place of an indirect substitution that
// cannot be resolved.
const unresolvedMarker = "<!-- unresolved: @%s -->"

// Render writes the text verbatim.
func (t *Text) Render(ctx context.Context, w io.StringWriter, _ *Scope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return write(w, t.Content)
}

func (t *Text) String() string { return fmt.Sprintf("text %q", t.Content) }

// Render resolves and formats the substitution.
//
// An unresolved direct substitution emits its expression's implicit text. An
// unresolved indirect substitution emits an HTML comment naming the key.
func (s *Substitution) Render(
	ctx context.Context,
	w io.StringWriter,
	scope *Scope,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	param := reduceParam(s.Param, scope)

	var (
		text     string
		verbatim bool
		ok       bool
		err      error
	)

	if s.Indirect {
		text, verbatim, ok, err = s.indirect(ctx, param, scope)
	} else {
		text, verbatim, ok, err = formatVerbatim(ctx, Reduce(s.Expr, scope), param, scope)
	}

	if err != nil {
		return err
	}

	logger := scope.options().logger

	if !ok {
		logger.DebugContext(ctx, "unresolved substitution",
			slog.String("expr", s.String()),
		)

		if s.Indirect {
			return write(w, fmt.Sprintf(unresolvedMarker, s.implicit()))
		}

		return write(w, s.implicit())
	}

	if verbatim {
		return write(w, text)
	}

	return write(w, scope.options().escape(text))
}

// indirect resolves the key expression to a name, then formats the binding
// with that name.
func (s *Substitution) indirect(
	ctx context.Context,
	param Value,
	scope *Scope,
) (text string, verbatim, ok bool, err error) {
	key, ok, err := Format(ctx, Reduce(s.Expr, scope), Undefined(), scope)
	if err != nil || !ok {
		return "", false, false, err
	}

	return formatVerbatim(ctx, Reduce(Var(key), scope), param, scope)
}

func (s *Substitution) implicit() string {
	if s.Expr == nil {
		return ""
	}

	return s.Expr.Implicit()
}

func (s *Substitution) String() string {
	var sb strings.Builder

	sb.WriteString("{")

	if s.Indirect {
		sb.WriteString("@")
	}

	if s.Expr != nil {
		sb.WriteString(s.Expr.String())
	}

	if s.Param != nil {
		sb.WriteString(" | ")
		sb.WriteString(s.Param.String())
	}

	sb.WriteString("}")

	return sb.String()
}

// reduceParam reduces a format parameter. A parameter that does not resolve
// stands for its own implicit text, so bare specifiers such as F2 need no
// quoting.
func reduceParam(param Expression, scope *Scope) Value {
	if param == nil {
		return Undefined()
	}

	v := Reduce(param, scope)
	if !v.IsDefined() {
		return String(param.Implicit())
	}

	return v
}

// Render renders Body once per element of Seq, with the element bound to
// Name in a child scope. Nothing is rendered when Seq does not resolve.
func (it *Iteration) Render(
	ctx context.Context,
	w io.StringWriter,
	scope *Scope,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	seq := Reduce(it.Seq, scope)
	if !seq.IsDefined() {
		scope.options().logger.DebugContext(ctx, "unresolved iteration",
			slog.String("expr", it.String()),
		)

		return nil
	}

	name := it.Name
	if name == "" {
		name = DefaultItemName
	}

	seq = collectOnce(seq)
	count := Count(seq)
	index := 0

	for elem := range Enumerate(seq) {
		if err := ctx.Err(); err != nil {
			return err
		}

		child := scope.Spawn()
		child.Set(name, External(&Iterator{Index: index, Count: count, Value: elem}))

		err := renderNodes(ctx, w, child, it.Body)

		child.Release()

		if err != nil {
			return err
		}

		index++
	}

	return nil
}

func (it *Iteration) String() string {
	name := it.Name
	if name == "" {
		name = DefaultItemName
	}

	seq := ""
	if it.Seq != nil {
		seq = it.Seq.String()
	}

	return fmt.Sprintf("each %s as %s (%d nodes)", seq, name, len(it.Body))
}

// Render renders Body against the caller's scope.
func (r *Root) Render(ctx context.Context, w io.StringWriter, scope *Scope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return renderNodes(ctx, w, scope, r.Body)
}

// ImplicitValue returns the root's identity.
func (r *Root) ImplicitValue(context.Context) (Value, error) {
	return String(r.Identity), nil
}

// Property resolves the name property to the root's identity.
func (r *Root) Property(name string) (Value, bool) {
	if name == "name" {
		return String(r.Identity), true
	}

	return Undefined(), false
}

func (r *Root) String() string {
	return fmt.Sprintf("root %q (%d nodes)", r.Identity, len(r.Body))
}

// renderNodes renders nodes in document order, stopping at the first error.
func renderNodes(
	ctx context.Context,
	w io.StringWriter,
	scope *Scope,
	nodes []Node,
) error {
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}

		if n == nil {
			continue
		}

		if err := n.Render(ctx, w, scope); err != nil {
			return err
		}
	}

	return nil
}

func write(w io.StringWriter, s string) error {
	if s == "" {
		return nil
	}

	if _, err := w.WriteString(s); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
