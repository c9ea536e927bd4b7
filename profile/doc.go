// Package profile provides optional runtime profiling for stencil.
//
// Profiling is compiled in only with the "pprof" build tag, which wires
// [github.com/pkg/profile] and registers the [net/http/pprof] handlers.
// Without the tag every operation is a no-op:
//
//	go build -tags pprof ./cmd/stencil
//	stencil --pprof-mode cpu --pprof-dir ./profiles render page.tmpl
//	go tool pprof -http=: ./profiles/cpu.pprof
//
// A [Profiler] describes one profiling session:
//
//	p := profile.Profiler{Mode: "heap", Dir: "/tmp/profiles", Quiet: true}
//	defer p.Start().Stop()
//
// Use [Modes] to list the modes supported by the current build.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
