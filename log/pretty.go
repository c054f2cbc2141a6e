package log

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
	ansiGray    = "\x1b[90m"
)

// field is one flattened key/value pair of a record. Group members carry
// their dotted path as key.
type field struct {
	key   string
	value slog.Value
}

// prettyHandler writes colorized records for a terminal. Text records are
// written on one line; JSON records are indented over several.
type prettyHandler struct {
	cfg    settings
	mu     *sync.Mutex
	prefix string
	fields []field
}

func newPrettyHandler(cfg settings) *prettyHandler {
	return &prettyHandler{cfg: cfg, mu: &sync.Mutex{}}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.Level(h.cfg.level)
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.fields = h.fields[:len(h.fields):len(h.fields)]

	for _, a := range attrs {
		c.fields = flatten(c.fields, h.prefix, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	out := make([]field, 0, 4+len(h.fields)+r.NumAttrs())

	if !r.Time.IsZero() && h.cfg.layout != "" {
		out = append(out, field{slog.TimeKey, slog.StringValue(r.Time.Format(h.cfg.layout))})
	}

	out = append(out, field{slog.LevelKey, slog.AnyValue(Level(r.Level))})

	if h.cfg.caller {
		if src := r.Source(); src != nil {
			out = append(out, field{
				slog.SourceKey,
				slog.StringValue(src.File + ":" + strconv.Itoa(src.Line)),
			})
		}
	}

	out = append(out, field{slog.MessageKey, slog.StringValue(r.Message)})
	out = append(out, h.fields...)

	r.Attrs(func(a slog.Attr) bool {
		out = flatten(out, h.prefix, a)

		return true
	})

	var buf bytes.Buffer
	if h.cfg.format == FormatJSON {
		writeJSON(&buf, out)
	} else {
		writeText(&buf, out)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.cfg.output.Write(buf.Bytes())

	return err
}

func flatten(out []field, prefix string, a slog.Attr) []field {
	v := a.Value.Resolve()

	if v.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, m := range v.Group() {
			out = flatten(out, prefix, m)
		}

		return out
	}

	if a.Key == "" && v.Any() == nil {
		return out
	}

	return append(out, field{prefix + a.Key, v})
}

func writeText(buf *bytes.Buffer, fields []field) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		color, text, _ := paint(f.value)

		buf.WriteString(ansiGray + f.key + ansiReset + "=")
		buf.WriteString(color + text + ansiReset)
	}

	buf.WriteByte('\n')
}

func writeJSON(buf *bytes.Buffer, fields []field) {
	buf.WriteString("{\n")

	for i, f := range fields {
		color, text, literal := paint(f.value)
		if !literal {
			text = strconv.Quote(text)
		}

		buf.WriteString("  " + ansiGray + strconv.Quote(f.key) + ansiReset + ": ")
		buf.WriteString(color + text + ansiReset)

		if i < len(fields)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
}

// paint returns the color and text of v. Literal values are valid JSON
// without quoting.
func paint(v slog.Value) (color, text string, literal bool) {
	switch v.Kind() {
	case slog.KindString:
		return ansiCyan, v.String(), false
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return ansiYellow, v.String(), true
	case slog.KindBool:
		if v.Bool() {
			return ansiGreen, "true", true
		}

		return ansiRed, "false", true
	case slog.KindDuration:
		return ansiMagenta, v.Duration().String(), false
	case slog.KindTime:
		return ansiBlue, v.Time().Format(time.RFC3339Nano), false
	}

	switch a := v.Any().(type) {
	case nil:
		return ansiGray, "null", true
	case Level:
		return levelColor(a), strings.ToUpper(a.String()), false
	case error:
		return ansiRed, a.Error(), false
	default:
		return ansiCyan, fmt.Sprint(a), false
	}
}

func levelColor(l Level) string {
	switch {
	case l >= LevelError:
		return ansiRed
	case l >= LevelWarn:
		return ansiYellow
	case l >= LevelInfo:
		return ansiGreen
	default:
		return ansiBlue
	}
}
