package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

// Profiler describes a profiling session.
type Profiler struct {
	// Mode selects the profile kind; see [Modes]. Empty disables profiling.
	Mode string
	// Path is the output directory.
	Path string
	// Quiet suppresses the start and stop messages of the profiler.
	Quiet bool
}

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling and returns a [Stopper] that ends it.
//
// When the binary is built without the pprof tag, or Mode is empty or
// unknown, the returned Stopper does nothing. Start and Stop are always safe
// to call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
