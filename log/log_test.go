package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// decode parses one non-pretty JSON record.
func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON record %q: %v", buf.String(), err)
	}

	return rec
}

func plainJSON(buf *bytes.Buffer, opts ...Option) Logger {
	return Make(buf, append([]Option{WithPretty(false), WithFormat(FormatJSON)}, opts...)...)
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Error("dropped")
	l.InfoContext(t.Context(), "dropped", slog.Int("n", 1))

	if got := l.With(slog.String("k", "v")); got.Logger != nil {
		t.Error("With on the zero Logger produced a live logger")
	}

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Errorf("zero Logger reports %v/%v", l.Level(), l.Format())
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		emit  func(Logger)
		want  bool
	}{
		{"trace hidden at debug", LevelDebug, func(l Logger) { l.Trace("m") }, false},
		{"trace shown at trace", LevelTrace, func(l Logger) { l.Trace("m") }, true},
		{"info hidden at warn", LevelWarn, func(l Logger) { l.Info("m") }, false},
		{"error shown at warn", LevelWarn, func(l Logger) { l.Error("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(plainJSON(&buf, WithLevel(tt.level)))

			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote record = %v, want %v (%q)", got, tt.want, buf.String())
			}
		})
	}
}

func TestLogger_JSONRecord(t *testing.T) {
	var buf bytes.Buffer

	l := plainJSON(&buf, WithLevel(LevelTrace), WithTimeLayout("none")).
		With(slog.String("tree", "index"))
	l.TraceContext(t.Context(), "reduced", slog.Int("depth", 2))

	want := map[string]any{
		"level": "TRACE",
		"msg":   "reduced",
		"tree":  "index",
		"depth": float64(2),
	}

	if diff := cmp.Diff(want, decode(t, &buf)); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestLogger_WrapKeepsAttrs(t *testing.T) {
	var first, second bytes.Buffer

	l := plainJSON(&first).With(slog.String("job", "7"))
	l = l.Wrap(WithOutput(&second), WithFormat(FormatText), WithTimeLayout(""))
	l.Warn("slow")

	if first.Len() != 0 {
		t.Errorf("old output received %q", first.String())
	}

	if got, want := second.String(), "level=WARN msg=slow job=7\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if l.Format() != FormatText {
		t.Errorf("Format = %v, want text", l.Format())
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	plainJSON(&buf, WithCaller(true)).Info("here")

	src, ok := decode(t, &buf)["source"].(map[string]any)
	if !ok {
		t.Fatalf("record has no source: %q", buf.String())
	}

	if file, _ := src["file"].(string); filepath.Base(file) != "log_test.go" {
		t.Errorf("source file = %q, want log_test.go", file)
	}
}

func TestLogger_TimeLayout(t *testing.T) {
	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2006-01-02T15:04:05Z07:00"},
		{"rfc3339-nano", "2006-01-02T15:04:05.999999999Z07:00"},
		{"Kitchen", "3:04PM"},
		{"ms", "Jan _2 15:04:05.000"},
		{" ", ""},
		{"None", ""},
		{"2006/01/02", "2006/01/02"},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			if got := resolveLayout(tt.layout); got != tt.want {
				t.Errorf("resolveLayout(%q) = %q, want %q", tt.layout, got, tt.want)
			}
		})
	}
}

func TestPretty_Text(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatText), WithTimeLayout("none"))
	l.With(slog.Group("job", slog.Int("id", 3))).
		Error("render failed", slog.Any("error", errors.New("boom")))

	plain := stripANSI(buf.String())
	if want := "level=ERROR msg=render failed job.id=3 error=boom\n"; plain != want {
		t.Errorf("got %q, want %q", plain, want)
	}

	if !strings.Contains(buf.String(), ansiRed+"ERROR") {
		t.Errorf("level not colorized: %q", buf.String())
	}
}

func TestPretty_JSON(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithTimeLayout("none"))
	l.Info("done", slog.Bool("ok", true), slog.String("path", `a"b`))

	var rec map[string]any
	if err := json.Unmarshal([]byte(stripANSI(buf.String())), &rec); err != nil {
		t.Fatalf("pretty JSON is not JSON once uncolored: %v\n%s", err, buf.String())
	}

	want := map[string]any{"level": "INFO", "msg": "done", "ok": true, "path": `a"b`}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func stripANSI(s string) string {
	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '\x1b' {
			for i < len(s) && s[i] != 'm' {
				i++
			}

			continue
		}

		sb.WriteByte(s[i])
	}

	return sb.String()
}
