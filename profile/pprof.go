//go:build pprof

package profile

import (
	"slices"

	"github.com/pkg/profile"

	_ "net/http/pprof" // registers handlers on http.DefaultServeMux
)

type mode struct {
	name string
	opt  func(*profile.Profile)
}

// modes is sorted by name.
var modes = []mode{
	{"allocs", profile.MemProfileAllocs},
	{"block", profile.BlockProfile},
	{"clock", profile.ClockProfile},
	{"cpu", profile.CPUProfile},
	{"goroutine", profile.GoroutineProfile},
	{"heap", profile.MemProfileHeap},
	{"mem", profile.MemProfile},
	{"mutex", profile.MutexProfile},
	{"thread", profile.ThreadcreationProfile},
	{"trace", profile.TraceProfile},
}

// Modes returns the names accepted by [Profiler.Mode], sorted.
func Modes() []string {
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.name
	}

	return names
}

func start(p Profiler) Stopper {
	i := slices.IndexFunc(modes, func(m mode) bool { return m.name == p.Mode })
	if i < 0 {
		return ignore{}
	}

	opts := []func(*profile.Profile){modes[i].opt, profile.NoShutdownHook}

	if p.Path != "" {
		opts = append(opts, profile.ProfilePath(p.Path))
	}

	if p.Quiet {
		opts = append(opts, profile.Quiet)
	}

	return profile.Start(opts...)
}
