// Package cli contains the command line interface for press.
//
// # Commands
//
//	press render -t post.yaml -m site.yaml -o public
//	press eval page.title -m site.yaml
//	press fmt -t post.yaml --format yaml
//	press init
//	press repl -m site.yaml
//
// # Configuration
//
// Flag defaults are read from config.json and config.yaml in the user
// configuration directory (for example ~/.config/press). The YAML file may
// nest flag names by their hyphenated prefix:
//
//	log:
//	  level: debug
//	  format: text
//	render:
//	  jobs: 8
//
// Command-line flags override config file values. [cmd.Init] writes the
// YAML file from the current flag values.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (json, text)
//   - --log-time-layout: timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: include caller information
//   - --[no-]log-pretty: colorized output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o press .
//
//   - --pprof-mode: profile kind (allocs, block, clock, cpu, goroutine, heap,
//     mem, mutex, thread, trace)
//   - --pprof-dir: output directory (default ~/.cache/press/pprof)
package cli
