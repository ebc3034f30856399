// Package slogobs provides an observability.Provider backed by log/slog.
// Spans, counters and histograms are emitted as structured log records, which
// is enough to follow a request end to end without a tracing backend.
//
// The main entry point is [New]; tune it with [WithFormat], [WithLevel],
// [WithOutput] and [WithLogger].
package slogobs
