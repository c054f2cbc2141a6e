package lang

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Template drives the two-phase render of a [Root].
//
// Phase one walks the tree in a working scope, emitting a placeholder token
// for every raw-HTML payload. Phase two replaces the tokens with their
// payloads. A Template is immutable and safe for concurrent use.
//
// A Template is also a [Callable]: invoking it renders the tree as a nested
// document and yields the output as a raw-HTML payload.
type Template struct {
	root *Root
	opts *options
}

// NewTemplate returns a template rendering root with the given options.
func NewTemplate(root *Root, opts ...Option) *Template {
	return &Template{root: root, opts: makeOptions(opts...)}
}

// Root returns the template's tree.
func (t *Template) Root() *Root { return t.root }

// Name returns the identity of the template's tree.
func (t *Template) Name() string { return t.root.Identity }

// Execute renders the template into w.
//
// The walk runs in a child of scope that binds the template's own root under
// its self name. Nothing is written to w unless the whole walk succeeds; a
// cancelled render returns the context's error.
func (t *Template) Execute(ctx context.Context, w io.Writer, scope *Scope) error {
	out, err := t.render(ctx, scope)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, out); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("root", t.root.Identity))
	}

	return nil
}

// Render renders the template against a fresh root scope seeded from
// metadata and returns the output.
func (t *Template) Render(ctx context.Context, metadata map[string]any) (string, error) {
	scope := ScopeOf(metadata)
	defer scope.Release()

	return t.render(ctx, scope)
}

// Invoke renders the template as a nested document in a child of scope. The
// output is returned as a raw-HTML payload so the enclosing render inserts
// it verbatim.
func (t *Template) Invoke(ctx context.Context, _ Value, scope *Scope) (Value, error) {
	out, err := t.render(ctx, scope)
	if err != nil {
		return Undefined(), err
	}

	return Raw(out), nil
}

func (t *Template) render(ctx context.Context, scope *Scope) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	logger := t.opts.logger.With(slog.String("root", t.root.Identity))
	logger.TraceContext(ctx, "render start")

	work := scope.Spawn()
	defer work.Release()

	reg := newRegistry()
	work.install(reg, t.opts)
	work.Set(t.opts.selfName, External(t.root))

	var sb strings.Builder

	if err := t.root.Render(ctx, &sb, work); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.TraceContext(ctx, "render cancelled", slog.Any("error", ctxErr))

			return "", ctxErr
		}

		return "", err
	}

	placeholders := reg.Len()
	out := reg.expand(sb.String())

	logger.TraceContext(ctx, "render done",
		slog.Int("placeholders", placeholders),
		slog.Int("bytes", len(out)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return out, nil
}
