// Package log provides the bridge's structured logging facade.
//
// # Overview
//
// A small Logger interface with leveled methods and a Field type for
// structured context. Records flow through log/slog via a handler that feeds
// the package's own formatter/output pipeline, so every component logs with
// the same shape whether it uses the facade or a *slog.Logger.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("delivery"), log.Str("fid", fidHex))
//	l.Info("frontier advanced", log.Uint64("next", 7))
//
// # Configuration
//
// ApplyConfig builds a logger from a declarative Config (level, text/json
// format, console or null output, redacted keys).
//
// # Interop
//
// RedirectStdLog routes the standard library logger (used by Pebble) into a
// Logger at info level.
package log
