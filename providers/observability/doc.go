// Package observability defines the interfaces and semantic conventions used
// for tracing, metrics and structured logging throughout fastprompt.
//
// [Provider] composes [Tracer], [Metrics] and [Logger] into one injectable
// dependency. The client propagates the active [Provider] and [Span] through a
// [context.Context] with [ContextWithObserver] and [ContextWithSpan]; adapters
// retrieve them with [ObserverFromContext] and [SpanFromContext].
package observability
