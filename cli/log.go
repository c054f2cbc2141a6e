package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ardnew/press/log"
)

// logLevel reconfigures the default logger as soon as kong decodes it, so
// errors reported while parsing the remaining flags honor it.
type logLevel string

func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(text))))

	return nil
}

// logFormat reconfigures the default logger as soon as kong decodes it.
type logFormat string

func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(text))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"json"    enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                         help:"Set timestamp layout by time constant name or custom layout."`
	Caller     bool      `default:"false"                           help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                            help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

func (f *logConfig) options() []log.Option {
	return []log.Option{
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	}
}

// start applies the parsed flags to the default logger, including those kong
// sets without decoding text, and returns a func that logs the run time of
// the command.
func (f *logConfig) start(ctx context.Context) (stop func()) {
	log.Config(f.options()...)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time_layout", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)

	began := time.Now()

	return func() {
		log.DebugContext(ctx, "command finished",
			slog.Duration("elapsed", time.Since(began)),
		)
	}
}

// scan applies logger flags found anywhere in args before kong parses them.
// Flags are matched by name only; values kong would reject are ignored here
// and reported by kong later. Scanning stops at "--".
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			break
		}

		flag, value, assigned := strings.Cut(args[i], "=")

		name, negated := strings.CutPrefix(flag, "--no-log-")
		if !negated {
			var ok bool
			if name, ok = strings.CutPrefix(flag, "--log-"); !ok {
				continue
			}
		}

		switch name {
		case "level", "format", "time-layout":
			if negated {
				continue
			}

			if !assigned {
				if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
					continue
				}

				i++
				value = args[i]
			}

			f.setText(name, value)

		case "caller", "pretty":
			enable := true

			if assigned {
				b, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}

				enable = b
			}

			f.setBool(name, enable != negated)
		}
	}
}

func (f *logConfig) setText(name, value string) {
	switch name {
	case "level":
		_ = f.Level.UnmarshalText([]byte(value))
	case "format":
		_ = f.Format.UnmarshalText([]byte(value))
	case "time-layout":
		f.TimeLayout = value
		log.Config(log.WithTimeLayout(value))
	}
}

func (f *logConfig) setBool(name string, enable bool) {
	switch name {
	case "caller":
		f.Caller = enable
		log.Config(log.WithCaller(enable))
	case "pretty":
		f.Pretty = enable
		log.Config(log.WithPretty(enable))
	}
}
