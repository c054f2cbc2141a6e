package log

import (
	"log/slog"
	"strings"
	"time"
)

// handler builds the slog handler described by s.
func (s settings) handler() slog.Handler {
	if s.pretty {
		return newPrettyHandler(s)
	}

	opts := &slog.HandlerOptions{
		AddSource:   s.caller,
		Level:       slog.Level(s.level),
		ReplaceAttr: s.replaceAttr,
	}

	switch s.format {
	case FormatJSON:
		return slog.NewJSONHandler(s.output, opts)
	case FormatText:
		return slog.NewTextHandler(s.output, opts)
	default:
		return slog.DiscardHandler
	}
}

// replaceAttr applies the time layout and names the trace level, which slog
// would otherwise print as "DEBUG-4".
func (s settings) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			if s.layout == "" {
				return slog.Attr{}
			}

			a.Value = slog.StringValue(t.Format(s.layout))
		}

	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(l).String()))
		}
	}

	return a
}
