// Package profile provides optional runtime profiling for press.
//
// Profiling wraps [github.com/pkg/profile] and is compiled in only with the
// pprof build tag:
//
//	go build -tags pprof -o press .
//
// Without the tag every operation is a no-op and [Modes] is empty.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     block (synchronization) profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace
//
// # Usage
//
//	stop := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}.Start()
//	defer stop.Stop()
//
// From the command line:
//
//	press --pprof-mode=cpu render -t site.yaml
//	go tool pprof -http=: ~/.cache/press/pprof/cpu.pprof
//
// The pprof build also registers the [net/http/pprof] handlers on
// [net/http.DefaultServeMux].
package profile
