package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/natefinch/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/press/helper"
	"github.com/ardnew/press/lang"
	"github.com/ardnew/press/log"
)

// outputDirMode is the permission mode of directories created under the
// output directory.
const outputDirMode os.FileMode = 0o755

// Render renders tree documents against merged metadata.
type Render struct {
	Trees    []string `help:"Tree document(s) to render, or '-' for stdin."         name:"tree"   required:"" short:"t" type:"existingfile"`
	Metadata []string `help:"Metadata document(s), merged left to right."           name:"meta"               short:"m" type:"existingfile"`
	Output   string   `help:"Output directory; trees are written to stdout if unset."                         short:"o" type:"path"`
	Lang     string   `help:"Locale for number formatting (e.g. de-DE)."            name:"lang"`
	Escape   string   `default:"html" enum:"html,none" help:"Escaping applied to substituted text."`
	Jobs     int      `default:"0"    help:"Maximum concurrent renders (0 uses GOMAXPROCS)." short:"j"`
	MaxDepth int      `default:"${maxDepth}" help:"Maximum nesting depth of callable values."`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.FromContext(ctx).With(slog.String("command", "render"))

	opts, err := r.options(logger)
	if err != nil {
		return err
	}

	meta, err := LoadMetadata(ctx, r.Metadata)
	if err != nil {
		return err
	}

	roots, err := loadTrees(ctx, r.Trees)
	if err != nil {
		return err
	}

	out := make([][]byte, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs())

	for i, root := range roots {
		g.Go(func() error {
			buf, err := r.render(gctx, logger, lang.NewTemplate(root, opts...), meta)
			if err != nil {
				return err
			}

			if r.Output == "" {
				out[i] = buf

				return nil
			}

			return r.write(gctx, logger, root.Identity, buf)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// Stdout output keeps the order of the tree flags.
	for _, buf := range out {
		if _, err := os.Stdout.Write(buf); err != nil {
			return ErrWriteOutput.Wrap(err).With(slog.String("file", "stdout"))
		}
	}

	return nil
}

func (r *Render) options(logger log.Logger) ([]lang.Option, error) {
	opts, err := LanguageOption(r.Lang)
	if err != nil {
		return nil, err
	}

	escape := lang.EscapeHTML
	if r.Escape == "none" {
		escape = lang.EscapeNone
	}

	return append(opts,
		lang.WithLogger(logger),
		lang.WithEscaper(escape),
		lang.WithMaxDepth(r.MaxDepth),
	), nil
}

func (r *Render) jobs() int {
	if r.Jobs > 0 {
		return r.Jobs
	}

	return runtime.GOMAXPROCS(0)
}

// render executes tmpl in a fresh root scope. Each render owns its scope, so
// concurrent renders share only the immutable metadata and trees.
func (r *Render) render(
	ctx context.Context,
	logger log.Logger,
	tmpl *lang.Template,
	meta map[string]any,
) ([]byte, error) {
	scope := lang.ScopeOf(meta)
	defer scope.Release()

	helper.Register(scope, helper.WithLogger(logger))

	var buf bytes.Buffer

	if err := tmpl.Execute(ctx, &buf, scope); err != nil {
		return nil, ErrRender.Wrap(err).With(slog.String("root", tmpl.Name()))
	}

	logger.DebugContext(ctx, "rendered",
		slog.String("root", tmpl.Name()),
		slog.Int("bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

// write replaces <Output>/<identity> atomically. The identity must be a
// local relative path.
func (r *Render) write(
	ctx context.Context,
	logger log.Logger,
	identity string,
	data []byte,
) error {
	if !filepath.IsLocal(identity) {
		return ErrOutputPath.With(slog.String("root", identity))
	}

	path := filepath.Join(r.Output, identity)

	if err := os.MkdirAll(filepath.Dir(path), outputDirMode); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", path))
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", path))
	}

	logger.DebugContext(ctx, "wrote output", slog.String("file", path))

	return nil
}
