// Package log records a structured trace of subscription store activity.
//
// The trace is separate from operational logging (slog). It captures one
// Event per store operation (subscribe, unsubscribe, publish, settlement,
// failure) so a session can be replayed and analyzed afterwards.
//
// # Basic Usage
//
// The store is configured with a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.Trace = log.NewSlogAdapter(slog.Default())
//
//	// For analysis: write to a binary file
//	cfg.Trace, _ = log.NewFileLogger("session.plog")
//
//	// Both
//	cfg.Trace = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Trace files are a concatenation of CBOR-encoded events using integer
// keys, conventionally with a .plog extension. The pathsub-log command
// views, summarizes and exports them.
package log
