package helper

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ardnew/mung"
	"golang.org/x/text/cases"

	"github.com/ardnew/press/lang"
	"github.com/ardnew/press/log"
)

// ErrArgument is returned by helpers given an unusable parameter.
var ErrArgument = lang.NewError("invalid helper argument")

// Option configures [Register].
type Option func(*config)

type config struct {
	environ []string
	clock   func() time.Time
	logger  log.Logger
}

// WithEnviron sets the process environment seen by the env helper, as
// "KEY=VALUE" strings. If not provided, os.Environ() is used.
func WithEnviron(environ []string) Option {
	return func(c *config) {
		c.environ = environ
	}
}

// WithClock sets the time source of the now helper.
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the structured logger for trace-level debugging.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Register binds every helper into scope. Existing bindings with the same
// names are shadowed only in scope itself.
func Register(scope *lang.Scope, opts ...Option) {
	for name, v := range Builtins(opts...) {
		scope.Set(name, v)
	}
}

// Builtins returns the helper values keyed by name.
func Builtins(opts ...Option) map[string]lang.Value {
	c := config{clock: time.Now}
	for _, opt := range opts {
		opt(&c)
	}

	environ := buildEnvironMap(c.environ)

	return map[string]lang.Value{
		"target":   lang.ValueOf(getTarget()),
		"platform": lang.ValueOf(getPlatform()),
		"hostname": lang.String(getHostname()),

		"env":    lang.Func(lang.CallableFunc(envFunc(environ))),
		"now":    lang.Func(lang.CallableFunc(nowFunc(c.clock))),
		"upper":  lang.Func(lang.CallableFunc(caseFunc(strings.ToUpper))),
		"lower":  lang.Func(lang.CallableFunc(caseFunc(strings.ToLower))),
		"title":  lang.Func(lang.CallableFunc(titleFunc)),
		"join":   lang.Func(lang.CallableFunc(joinFunc)),
		"prefix": lang.Func(lang.CallableFunc(prefixFunc)),
		"calc":   lang.Func(lang.CallableFunc(calcFunc(c.logger))),
		"raw":    lang.Func(lang.CallableFunc(rawFunc)),
	}
}

// Names returns the sorted names of all helpers.
func Names() []string {
	return slices.Sorted(maps.Keys(Builtins()))
}

// text formats a helper parameter without a specifier.
func text(ctx context.Context, param lang.Value, scope *lang.Scope) (string, bool, error) {
	return lang.Format(ctx, param, lang.Undefined(), scope)
}

// args splits a group parameter into its formatted elements. A scalar
// parameter is a single argument.
func args(ctx context.Context, param lang.Value, scope *lang.Scope) ([]string, error) {
	var out []string

	for v := range lang.Enumerate(param) {
		s, _, err := text(ctx, v, scope)
		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, nil
}

// buildEnvironMap converts a "KEY=VALUE" string slice to a map.
// If environ is nil, os.Environ() is used.
func buildEnvironMap(environ []string) map[string]string {
	if environ == nil {
		environ = os.Environ()
	}

	result := make(map[string]string, len(environ))

	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if ok {
			result[key] = value
		}
	}

	return result
}

// envFunc yields the environment variable named by the parameter, or
// not-found when it is unset.
func envFunc(environ map[string]string) lang.CallableFunc {
	return func(ctx context.Context, param lang.Value, scope *lang.Scope) (lang.Value, error) {
		key, ok, err := text(ctx, param, scope)
		if err != nil || !ok {
			return lang.Undefined(), err
		}

		value, ok := environ[key]
		if !ok {
			return lang.Undefined(), nil
		}

		return lang.String(value), nil
	}
}

// nowFunc yields the current time, formatted by the parameter if one is
// given.
func nowFunc(clock func() time.Time) lang.CallableFunc {
	return func(ctx context.Context, param lang.Value, scope *lang.Scope) (lang.Value, error) {
		now := lang.Time(clock())
		if !param.IsDefined() {
			return now, nil
		}

		s, _, err := lang.Format(ctx, now, param, scope)
		if err != nil {
			return lang.Undefined(), err
		}

		return lang.String(s), nil
	}
}

func caseFunc(convert func(string) string) lang.CallableFunc {
	return func(ctx context.Context, param lang.Value, scope *lang.Scope) (lang.Value, error) {
		s, ok, err := text(ctx, param, scope)
		if err != nil || !ok {
			return lang.Undefined(), err
		}

		return lang.String(convert(s)), nil
	}
}

// titleFunc title-cases the parameter using the rules of the scope's locale.
func titleFunc(ctx context.Context, param lang.Value, scope *lang.Scope) (lang.Value, error) {
	s, ok, err := text(ctx, param, scope)
	if err != nil || !ok {
		return lang.Undefined(), err
	}

	return lang.String(cases.Title(lang.Locale(scope)).String(s)), nil
}

// joinFunc joins the second and later group elements with the first.
func joinFunc(ctx context.Context, param lang.Value, scope *lang.Scope) (lang.Value, error) {
	items, err := args(ctx, param, scope)
	if err != nil {
		return lang.Undefined(), err
	}

	if len(items) == 0 {
		return lang.Undefined(), ErrArgument.With(
			slog.String("helper", "join"),
			slog.String("reason", "missing separator"),
		)
	}

	return lang.String(strings.Join(items[1:], items[0])), nil
}

// prefixFunc prepends the second and later group elements to the
// path-list-delimited first element, removing duplicates.
func prefixFunc(ctx context.Context, param lang.Value, scope *lang.Scope) (lang.Value, error) {
	items, err := args(ctx, param, scope)
	if err != nil {
		return lang.Undefined(), err
	}

	if len(items) == 0 {
		return lang.Undefined(), ErrArgument.With(
			slog.String("helper", "prefix"),
			slog.String("reason", "missing list"),
		)
	}

	return lang.String(mung.Make(
		mung.WithSubjectItems(items[0]),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(items[1:]...),
	).String()), nil
}

// rawFunc marks the parameter's text as raw HTML.
func rawFunc(ctx context.Context, param lang.Value, scope *lang.Scope) (lang.Value, error) {
	s, ok, err := text(ctx, param, scope)
	if err != nil || !ok {
		return lang.Undefined(), err
	}

	return lang.Raw(s), nil
}
