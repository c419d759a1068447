// Package logging builds the slog loggers used across tvscribe.
//
// It supports console and JSON output formats, multiple output paths
// (stdout plus a file under the configured log directory), and provides
// attribute helpers so call sites stay terse. Component and channel
// attributes are rendered specially by the console handler to keep
// per-channel log streams readable.
//
// Construct loggers through NewFromConfig so every process shares the same
// level parsing and output conventions.
package logging
