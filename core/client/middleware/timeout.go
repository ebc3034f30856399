package middleware

import (
	"context"
	"time"

	"github.com/leofalp/fastprompt/core/client"
	"github.com/leofalp/fastprompt/providers/ai"
)

// NewTimeoutMiddleware creates a Middleware that enforces a per-request
// deadline. The context is wrapped with context.WithTimeout and canceled once
// the adapter returns. A caller context with a shorter deadline still wins.
//
// An expired deadline surfaces from the adapter as an [ai.ProviderError] with
// Timeout set.
func NewTimeoutMiddleware(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.PromptRequest) (*ai.NormalizedResult, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}
}
