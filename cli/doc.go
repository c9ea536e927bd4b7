// Package cli contains the command line interface for stencil.
//
// # Usage
//
// Render is the default command, so a template path or inline template may
// follow the global flags directly:
//
//	stencil page.tmpl -d site.yaml -s title=Home
//	stencil -e 'Hello, ${name}!' -s name=world
//	stencil tokens page.tmpl --format yaml
//	stencil repl -d site.yaml
//	stencil init
//
// # Configuration
//
// Flag defaults are read from config.yaml or config.json in the user
// configuration directory. YAML keys may be nested by flag prefix:
//
//	log:
//	  level: debug
//	  pretty: false
//
// Command-line flags override configuration file values. Use init to write
// the current flag values to config.yaml.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize output (default when stderr is a terminal)
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o stencil .
//
// Then --pprof-mode selects one of allocs, block, clock, cpu, goroutine,
// heap, mem, mutex, thread or trace, and --pprof-dir sets the output
// directory (default: the pprof directory in the user cache directory).
package cli
