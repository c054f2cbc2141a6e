package lang

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// timeLayout maps named layouts (case-insensitive) to Go time layouts.
var timeLayout = map[string]string{
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"rfc1123":     time.RFC1123,
	"rfc1123z":    time.RFC1123Z,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"datetime":    time.DateTime,
	"date":        time.DateOnly,
	"time":        time.TimeOnly,
}

// Format converts v to text, applying param as a format specifier where the
// value accepts one.
//
// The second result is false when v (or whatever it resolves to) is
// undefined or rejects param as a specifier, in which case the caller decides
// what to emit. Errors are reserved for cancellation, callable failures, and
// resolution chains deeper than the configured maximum.
func Format(
	ctx context.Context,
	v Value,
	param Value,
	scope *Scope,
) (string, bool, error) {
	text, _, ok, err := formatVerbatim(ctx, v, param, scope)

	return text, ok, err
}

// formatVerbatim is [Format] that also reports whether text is a raw payload
// written out directly because scope has no placeholder registry. Such text
// must not be escaped.
func formatVerbatim(
	ctx context.Context,
	v Value,
	param Value,
	scope *Scope,
) (text string, verbatim, ok bool, err error) {
	f := formatter{scope: scope, opts: scope.options(), verbatim: &verbatim}
	text, ok, err = f.format(ctx, v, param, 0)

	return text, verbatim, ok, err
}

type formatter struct {
	scope    *Scope
	opts     *options
	verbatim *bool // set when the result is an unregistered raw payload
}

func (f formatter) format(
	ctx context.Context,
	v Value,
	param Value,
	depth int,
) (string, bool, error) {
	if !v.IsDefined() {
		return "", false, nil
	}

	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	if depth > f.opts.maxDepth {
		return "", false, ErrMaxDepthExceeded.With(
			slog.Int("depth", depth),
			slog.String("kind", v.kind.String()),
		)
	}

	if v.kind == KindExternal {
		if iv, ok := v.data.(ImplicitValuer); ok {
			next, err := iv.ImplicitValue(ctx)
			if err != nil {
				return "", false, f.fail(ctx, err, v)
			}

			return f.format(ctx, next, param, depth+1)
		}
	}

	switch v.kind {
	case KindCallable:
		res, err := v.data.(Callable).Invoke(ctx, param, f.scope)
		if err != nil {
			return "", false, f.fail(ctx, err, v)
		}

		return f.format(ctx, res, Undefined(), depth+1)

	case KindRaw:
		html := string(v.data.(RawHTML))
		if reg := f.scope.registry(); reg != nil {
			return reg.register(html), true, nil
		}

		if f.verbatim != nil {
			*f.verbatim = true
		}

		return html, true, nil
	}

	if spec, ok := param.AsString(); ok && spec != "" {
		text, ok, err := f.formatSpec(v, spec)
		if err != nil {
			f.opts.logger.DebugContext(ctx, "format specifier rejected",
				slog.Any("error", err),
			)

			return "", false, nil
		}

		if ok {
			return text, true, nil
		}
	}

	switch v.kind {
	case KindString:
		return v.data.(string), true, nil

	case KindList, KindMap:
		return f.join(ctx, v, param, depth)

	case KindExternal:
		if _, ok := v.data.(Sequence); ok {
			return f.join(ctx, v, param, depth)
		}
	}

	return v.String(), true, nil
}

// formatSpec applies a string specifier to a formattable value. The second
// result is false when v does not accept specifiers.
func (f formatter) formatSpec(v Value, spec string) (string, bool, error) {
	var (
		text string
		err  error
	)

	switch v.kind {
	case KindInt, KindFloat:
		text, err = formatNumber(v, spec, localeOf(f.scope, f.opts))

	case KindTime:
		text = formatTime(v.data.(time.Time), spec)

	case KindExternal:
		fm, ok := v.data.(Formatter)
		if !ok {
			return "", false, nil
		}

		text, err = fm.FormatValue(spec, localeOf(f.scope, f.opts))

	default:
		return "", false, nil
	}

	if err != nil {
		e := WrapError(err)
		if !e.Is(ErrInvalidFormat) {
			e = ErrInvalidFormat.Wrap(err).With(slog.String("spec", spec))
		}

		return "", false, e.With(slog.String("kind", v.kind.String()))
	}

	return text, true, nil
}

// join formats each element of a collection and joins them with commas.
// Undefined elements contribute empty text. The joined text is never
// verbatim, even when an element is raw.
func (f formatter) join(
	ctx context.Context,
	v Value,
	param Value,
	depth int,
) (string, bool, error) {
	var sb strings.Builder

	f.verbatim = nil

	i := 0
	for elem := range Enumerate(v) {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		text, _, err := f.format(ctx, elem, param, depth+1)
		if err != nil {
			return "", false, err
		}

		if i > 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(text)
		i++
	}

	return sb.String(), true, nil
}

// fail classifies an error raised while resolving v. Cancellation passes
// through unchanged so callers can test it with errors.Is.
func (f formatter) fail(ctx context.Context, err error, v Value) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if e, ok := err.(*Error); ok && (e.Is(ErrMaxDepthExceeded) || e.Is(ErrCallable)) {
		return e
	}

	return ErrCallable.Wrap(err).With(slog.String("kind", v.kind.String()))
}

// formatTime formats t with a strftime pattern (any spec containing '%'),
// a named layout, or a Go reference layout.
func formatTime(t time.Time, spec string) string {
	if strings.ContainsRune(spec, '%') {
		return strftime.Format(spec, t)
	}

	if layout, ok := timeLayout[strings.ToLower(spec)]; ok {
		return t.Format(layout)
	}

	return t.Format(spec)
}
