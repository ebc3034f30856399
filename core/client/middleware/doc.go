// Package middleware provides built-in middleware implementations for the
// fastprompt client. Each middleware is constructed via a New* function that
// returns a [client.Middleware] ready to be passed to [client.WithMiddleware].
//
// # Available Middleware
//
//   - [NewTimeoutMiddleware]: Adds a per-request deadline via context.WithTimeout,
//     ensuring that a stalled vendor call does not block the caller indefinitely.
//
//   - [NewLoggingMiddleware]: Emits structured slog entries before and after
//     every adapter call, with three verbosity levels (Minimal, Standard, Verbose).
//
// There is deliberately no retry middleware: every request makes exactly one
// vendor call and failures are returned to the caller.
//
// # Usage
//
//	c, err := client.New(adapter,
//	    client.WithMiddleware(
//	        middleware.NewTimeoutMiddleware(30*time.Second),
//	        middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	    ),
//	)
//
// Middlewares execute outermost-first: the first entry in WithMiddleware runs
// first on the way in and last on the way out.
package middleware
