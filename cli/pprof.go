//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ardnew/press/log"
	"github.com/ardnew/press/pkg"
	"github.com/ardnew/press/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Profile the command."       placeholder:"${enum}" short:"p"`
	Dir  string `default:"${pprofDir}"                          help:"Profile output directory." type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      pkg.CachePath(profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start begins the configured profile, if any, and returns a func that
// flushes it.
func (f pprofConfig) start(ctx context.Context) (stop func()) {
	if f.Mode == "" {
		return func() {}
	}

	attrs := []slog.Attr{slog.String("mode", f.Mode), slog.String("dir", f.Dir)}

	log.DebugContext(ctx, "profiling started", attrs...)

	began := time.Now()
	session := profile.Profiler{Mode: f.Mode, Path: f.Dir, Quiet: true}.Start()

	return func() {
		session.Stop()
		log.DebugContext(ctx, "profile written",
			append(attrs, slog.Duration("elapsed", time.Since(began)))...)
	}
}
