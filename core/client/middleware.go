package client

import (
	"context"

	"github.com/leofalp/fastprompt/providers/ai"
)

// SendFunc sends one prompt request to the adapter and returns the normalized
// result. It is the base unit threaded through the middleware chain.
type SendFunc func(ctx context.Context, request ai.PromptRequest) (*ai.NormalizedResult, error)

// Middleware intercepts prompt requests and their results. Each Middleware
// receives the next SendFunc in the chain and returns a new SendFunc that wraps
// it. The first middleware in the slice is the outermost wrapper.
type Middleware func(next SendFunc) SendFunc

// buildSendChain constructs the linear middleware chain. The base function
// calls the adapter directly. Middlewares are applied in reverse order so that
// the first entry becomes the outermost wrapper.
func buildSendChain(adapter ai.ChatAdapter, middlewares []Middleware) SendFunc {
	var chain SendFunc = func(ctx context.Context, request ai.PromptRequest) (*ai.NormalizedResult, error) {
		return adapter.Request(ctx, request)
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i](chain)
	}

	return chain
}
