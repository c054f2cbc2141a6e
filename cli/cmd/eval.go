package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ardnew/press/helper"
	"github.com/ardnew/press/lang"
	"github.com/ardnew/press/log"
	"github.com/ardnew/press/tree"
)

// Eval reduces one dotted path against metadata and prints the formatted
// result.
type Eval struct {
	Path     string   `arg:"" help:"Dotted path to reduce (e.g. page.title)."`
	Param    string   `help:"Format parameter: a specifier such as N2, or a tagged expression such as {var: fmt}." short:"p"`
	Metadata []string `help:"Metadata document(s), merged left to right." name:"meta" short:"m" type:"existingfile"`
	Lang     string   `help:"Locale for number formatting (e.g. de-DE)."  name:"lang"`
	Strict   bool     `help:"Fail instead of printing the fallback text when the path does not resolve."`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.FromContext(ctx).With(slog.String("command", "eval"))

	opts, err := LanguageOption(e.Lang)
	if err != nil {
		return err
	}

	meta, err := LoadMetadata(ctx, e.Metadata)
	if err != nil {
		return err
	}

	param, err := tree.ParseParam(ctx, e.Param)
	if err != nil {
		return err
	}

	scope := lang.ScopeOf(meta, append(opts, lang.WithLogger(logger))...)
	defer scope.Release()

	helper.Register(scope, helper.WithLogger(logger))

	text, err := e.eval(ctx, scope, param)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(os.Stdout, text)

	return err
}

func (e *Eval) eval(ctx context.Context, scope *lang.Scope, param lang.Expression) (string, error) {
	text, ok, err := Evaluate(ctx, scope, e.Path, param)
	if err != nil {
		return "", err
	}

	if !ok {
		if e.Strict {
			return "", ErrUnresolved.With(slog.String("path", e.Path))
		}

		log.FromContext(ctx).DebugContext(ctx, "unresolved path", slog.String("path", e.Path))
	}

	return text, nil
}

// Evaluate reduces path in scope and formats the result with param, the way
// a substitution would. When the path does not resolve, ok is false and text
// is the path itself.
func Evaluate(
	ctx context.Context,
	scope *lang.Scope,
	path string,
	param lang.Expression,
) (text string, ok bool, err error) {
	expr := lang.Var(path)

	var pv lang.Value

	if param != nil {
		if pv = lang.Reduce(param, scope); !pv.IsDefined() {
			pv = lang.String(param.Implicit())
		}
	}

	text, ok, err = lang.Format(ctx, lang.Reduce(expr, scope), pv, scope)
	if err != nil {
		return "", false, err
	}

	if !ok {
		return expr.Implicit(), false, nil
	}

	return text, true, nil
}
