//go:build !pprof

package profile

// Modes returns nothing when built without the pprof tag.
func Modes() []string { return nil }

func start(Profiler) Stopper { return ignore{} }
