package log

import (
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"
)

// Level is the severity of a log message.
type Level slog.Level

const (
	LevelTrace Level = Level(slog.LevelDebug - 4)
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

// DefaultLevel is used when a level cannot be parsed.
const DefaultLevel = LevelInfo

var levelNames = [...]struct {
	level Level
	name  string
}{
	{LevelTrace, "trace"},
	{LevelDebug, "debug"},
	{LevelInfo, "info"},
	{LevelWarn, "warn"},
	{LevelError, "error"},
}

// String returns the lowercase name of l. Levels between the named ones are
// written as an offset from the nearest name below, e.g. "info+2".
func (l Level) String() string {
	for _, n := range levelNames {
		if n.level == l {
			return n.name
		}
	}

	return strings.ToLower(slog.Level(l).String())
}

// Levels yields the name of every named level, least severe first.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, n := range levelNames {
			if !yield(n.name) {
				return
			}
		}
	}
}

// ParseLevel returns the level named by s, ignoring case. Offsets such as
// "warn-2" are accepted as described by [slog.Level.UnmarshalText].
// Unrecognized input yields [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)

	for _, n := range levelNames {
		if strings.EqualFold(s, n.name) {
			return n.level
		}
	}

	var sl slog.Level
	if err := sl.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(sl)
}

// Format selects the encoding of log records.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is used when a format cannot be parsed.
const DefaultFormat = FormatJSON

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Formats yields the name of every supported format.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = yield(FormatJSON.String()) && yield(FormatText.String())
	}
}

// ParseFormat returns the format named by s, ignoring case.
// Unrecognized input yields [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return DefaultFormat
	}
}

// DefaultTimeLayout is the timestamp layout of a new [Logger].
const DefaultTimeLayout = time.RFC3339

// settings is the immutable configuration behind a [Logger]. Options modify
// a private copy, so a settings value is never shared while it changes.
type settings struct {
	output io.Writer
	layout string // empty omits timestamps
	level  Level
	format Format
	caller bool
	pretty bool
}

func defaultSettings(w io.Writer) settings {
	if w == nil {
		w = io.Discard
	}

	return settings{
		output: w,
		layout: DefaultTimeLayout,
		level:  DefaultLevel,
		format: DefaultFormat,
		pretty: true,
	}
}

func (s settings) with(opts ...Option) settings {
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	return s
}

// Option configures a [Logger] created by [Make] or [Logger.Wrap].
type Option func(*settings)

// WithOutput directs log records to w. A nil writer discards them.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w == nil {
			w = io.Discard
		}

		s.output = w
	}
}

// WithLevel discards records less severe than level.
func WithLevel(level Level) Option {
	return func(s *settings) { s.level = level }
}

// WithFormat selects the record encoding.
func WithFormat(format Format) Option {
	return func(s *settings) { s.format = format }
}

// WithCaller adds the source file and line of each call site.
func WithCaller(enable bool) Option {
	return func(s *settings) { s.caller = enable }
}

// WithPretty enables colorized output. Pretty JSON is indented across
// several lines; pretty text drops quoting.
func WithPretty(enable bool) Option {
	return func(s *settings) { s.pretty = enable }
}

// WithTimeLayout sets the timestamp layout.
//
// The name of a layout constant from package [time] selects that layout,
// ignoring case and punctuation, so "rfc3339-nano" and "RFC3339Nano" are
// equivalent. The short names "ms", "us", and "ns" select the Stamp layouts of
// that precision. Any other text is used verbatim as a [time.Time.Format]
// layout. A blank layout or "none" removes timestamps.
func WithTimeLayout(layout string) Option {
	return func(s *settings) { s.layout = resolveLayout(layout) }
}

var namedLayouts = map[string]string{
	"none":        "",
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
	"datetime":    time.DateTime,
	"dateonly":    time.DateOnly,
	"timeonly":    time.TimeOnly,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
	"ms":          time.StampMilli,
	"us":          time.StampMicro,
	"ns":          time.StampNano,
}

func resolveLayout(layout string) string {
	key := strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z', '0' <= r && r <= '9':
			return r
		case 'A' <= r && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return -1
		}
	}, layout)

	if key == "" {
		return ""
	}

	if named, ok := namedLayouts[key]; ok {
		return named
	}

	return layout
}
