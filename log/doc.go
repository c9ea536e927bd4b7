// Package log is a concurrency-safe wrapper around [log/slog] used by every
// stencil package.
//
// A [Logger] is a value. Its zero value discards everything, so libraries
// can hold one unconditionally and let callers opt in with a real logger:
//
//	logger := log.Make(os.Stderr, log.WithLevel(log.LevelTrace))
//	logger.Debug("rendered", slog.Int("bytes", n))
//
// Options are applied when a logger is made or wrapped:
//
//	logger = logger.Wrap(log.WithFormat(log.FormatText), log.WithCaller(true))
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn] and [LevelError]. Trace sits below slog's Debug and is where
// the template interpreter reports its per-command activity.
//
// # Output
//
// Records are written as JSON ([FormatJSON], the default) or logfmt-style
// text ([FormatText]). With [WithPretty] either format is colorized with
// lipgloss styles; colors are dropped automatically when the output is not a
// terminal.
//
// The package-level functions ([Info], [ErrorContext], ...) write through a
// default logger that targets stderr, leaving stdout to rendered output.
// Reconfigure it with [Config].
package log
