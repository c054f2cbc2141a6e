// Package log is the structured logger of press, a thin layer over
// [log/slog] that adds a trace level, named timestamp layouts, and a
// colorized terminal encoding.
//
// A [Logger] is configured once with functional options and then copied
// freely:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//
//	logger = logger.With(slog.String("tree", "index"))
//	logger.DebugContext(ctx, "render started")
//
// The zero Logger discards every record. Packages that accept a logger
// through an option therefore stay silent unless the caller provides one.
//
// The package-level functions write through [Default], which the command
// line reconfigures with [Config] as flags are parsed. [IntoContext] and
// [FromContext] carry a logger across API boundaries that only pass a
// [context.Context].
package log
