package helper

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/press/lang"
	"github.com/ardnew/press/log"
)

// ErrCalc is returned when a calc expression fails to compile or run.
var ErrCalc = lang.NewError("calc expression failed")

// programCache stores compiled expr-lang programs keyed by the xxh3 hash of
// their source. Programs are immutable and safe for concurrent use.
var programCache sync.Map

// calcFunc evaluates the parameter as an expr-lang expression. Every binding
// visible from the calling scope is available to the expression by name.
func calcFunc(logger log.Logger) lang.CallableFunc {
	return func(ctx context.Context, param lang.Value, scope *lang.Scope) (lang.Value, error) {
		source := calcSource(param)
		if source == "" {
			return lang.Undefined(), ErrArgument.With(
				slog.String("helper", "calc"),
				slog.String("reason", "empty expression"),
			)
		}

		program, err := compile(ctx, logger, source)
		if err != nil {
			return lang.Undefined(), err
		}

		out, err := expr.Run(program, calcEnv(scope))
		if err != nil {
			return lang.Undefined(), ErrCalc.Wrap(err).With(slog.String("source", source))
		}

		return lang.ValueOf(out), nil
	}
}

// calcSource returns the expression text of a parameter. A group parameter
// is rejoined with spaces, so an unquoted expression survives tokenizing.
func calcSource(param lang.Value) string {
	if elems, ok := param.AsList(); ok {
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = e.String()
		}

		return strings.TrimSpace(strings.Join(parts, " "))
	}

	return strings.TrimSpace(param.String())
}

func compile(ctx context.Context, logger log.Logger, source string) (*vm.Program, error) {
	hash := xxh3.HashString(source)

	if cached, ok := programCache.Load(hash); ok {
		logger.TraceContext(ctx, "calc cache hit",
			slog.String("source_hash", strconv.FormatUint(hash, 16)),
		)

		return cached.(*vm.Program), nil
	}

	program, err := expr.Compile(source)
	if err != nil {
		return nil, ErrCalc.Wrap(err).With(slog.String("source", source))
	}

	actual, _ := programCache.LoadOrStore(hash, program)

	logger.TraceContext(ctx, "calc compiled",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
	)

	return actual.(*vm.Program), nil
}

// calcEnv converts the visible bindings to plain Go data. Callables are
// omitted; entries contribute their implicit value where it is available
// without blocking.
func calcEnv(scope *lang.Scope) map[string]any {
	bindings := scope.Bindings()
	env := make(map[string]any, len(bindings))

	for name, v := range bindings {
		switch v.Kind() {
		case lang.KindCallable, lang.KindRaw:
			continue

		case lang.KindExternal:
			if it, ok := v.External().(*lang.Iterator); ok {
				env[name] = it.Value.Native()

				continue
			}
		}

		env[name] = v.Native()
	}

	return env
}

// ClearCache removes all compiled programs.
func ClearCache() {
	programCache.Clear()
}
