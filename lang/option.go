package lang

import (
	"html"

	"golang.org/x/text/language"

	"github.com/ardnew/press/log"
)

// DefaultMaxDepth is the default maximum number of implicit-value and
// callable hops a single format may follow.
const DefaultMaxDepth = 100

// DefaultSelfName is the default name a [Template] binds its root unit to.
const DefaultSelfName = "this"

// DefaultItemName is the default name an [Iteration] binds each element to.
const DefaultItemName = "item"

// LocaleName is the binding consulted for the formatting locale.
const LocaleName = "lang"

// Escaper transforms formatted text before it is written to output.
type Escaper func(string) string

// EscapeHTML escapes text for inclusion in HTML content.
func EscapeHTML(s string) string { return html.EscapeString(s) }

// EscapeNone returns s unchanged.
func EscapeNone(s string) string { return s }

// Option configures a [Scope] tree or a [Template].
type Option func(*options)

type options struct {
	logger   log.Logger
	escape   Escaper
	selfName string
	maxDepth int
	locale   language.Tag
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEscaper sets the function applied to formatted substitution text.
// Raw-HTML payloads are never escaped.
func WithEscaper(escape Escaper) Option {
	return func(o *options) {
		if escape != nil {
			o.escape = escape
		}
	}
}

// WithMaxDepth sets the maximum implicit/callable resolution depth.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithSelfName sets the name a template binds its own root unit to.
func WithSelfName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.selfName = name
		}
	}
}

// WithLocale sets the fallback locale used when no lang binding is visible.
func WithLocale(tag language.Tag) Option {
	return func(o *options) {
		o.locale = tag
	}
}

func makeOptions(opts ...Option) *options {
	o := &options{
		escape:   EscapeNone,
		selfName: DefaultSelfName,
		maxDepth: DefaultMaxDepth,
		locale:   language.Und,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// fallbackLocale returns the configured locale or the process default.
func (o *options) fallbackLocale() language.Tag {
	if o.locale != language.Und {
		return o.locale
	}

	return DefaultLocale()
}
