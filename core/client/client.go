package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leofalp/fastprompt/providers/ai"
	"github.com/leofalp/fastprompt/providers/observability"
)

// ErrBatchUnsupported is returned by the batch methods when the adapter does
// not implement [ai.BatchAdapter].
var ErrBatchUnsupported = errors.New("fastprompt: provider does not support batch processing")

// Client is the entry point for prompt requests. It holds one adapter and an
// immutable middleware chain built at construction time; a Client is safe for
// concurrent use as long as its adapter is.
type Client struct {
	adapter     ai.ChatAdapter
	observer    observability.Provider // nil unless WithObserver is used
	middlewares []Middleware
	send        SendFunc
}

// Option configures a Client.
type Option func(*Client)

// WithObserver enables spans, metrics and logs for every call. The
// observability middleware is prepended to the chain so it records the final
// outcome of each request.
func WithObserver(observer observability.Provider) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// WithMiddleware appends middlewares to the chain. The first one passed is the
// outermost wrapper.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(c *Client) {
		c.middlewares = append(c.middlewares, middlewares...)
	}
}

// New creates a Client around adapter.
//
// Example:
//
//	c, err := client.New(openai.New(cfg),
//	    client.WithObserver(slogobs.New()),
//	    client.WithMiddleware(middleware.NewTimeoutMiddleware(30*time.Second)),
//	)
func New(adapter ai.ChatAdapter, opts ...Option) (*Client, error) {
	if adapter == nil {
		return nil, errors.New("client: adapter must not be nil")
	}

	c := &Client{adapter: adapter}
	for _, opt := range opts {
		opt(c)
	}

	for i, mw := range c.middlewares {
		if mw == nil {
			return nil, fmt.Errorf("client: middleware at index %d is nil", i)
		}
	}

	chain := c.middlewares
	if c.observer != nil {
		chain = append([]Middleware{NewObservabilityMiddleware(c.observer, adapter.Name(), adapter.Model())}, chain...)
	}
	c.send = buildSendChain(adapter, chain)

	return c, nil
}

// Adapter returns the adapter the client was built with.
func (c *Client) Adapter() ai.ChatAdapter {
	return c.adapter
}

// Chat sends a text-only prompt pair.
func (c *Client) Chat(ctx context.Context, systemPrompt, userPrompt string) (*ai.NormalizedResult, error) {
	return c.Request(ctx, ai.PromptRequest{SystemPrompt: systemPrompt, UserPrompt: userPrompt})
}

// ChatWithImage sends a prompt pair together with an image. A nil image is a
// validation error; use Chat for text-only prompts.
func (c *Client) ChatWithImage(ctx context.Context, systemPrompt, userPrompt string, image *ai.ImageRef) (*ai.NormalizedResult, error) {
	if image == nil {
		return nil, ai.NewValidationError("image", "an image reference is required")
	}
	return c.Request(ctx, ai.PromptRequest{SystemPrompt: systemPrompt, UserPrompt: userPrompt, Image: image})
}

// Request sends one prompt request through the middleware chain. Exactly one
// vendor call is made per invocation; failures are returned, never retried.
func (c *Client) Request(ctx context.Context, request ai.PromptRequest) (*ai.NormalizedResult, error) {
	return c.send(ctx, request)
}

// SubmitBatch forwards requests to the adapter's batch API.
// Returns ErrBatchUnsupported when the adapter has none.
func (c *Client) SubmitBatch(ctx context.Context, requests []ai.PromptRequest) (*ai.BatchHandle, error) {
	batcher, ok := c.adapter.(ai.BatchAdapter)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBatchUnsupported, c.adapter.Name())
	}

	ctx, finish := c.startBatchSpan(ctx, observability.SpanClientBatchSubmit,
		observability.Int(observability.AttrBatchSize, len(requests)),
	)
	handle, err := batcher.SubmitBatch(ctx, requests)
	finish(err)

	return handle, err
}

// PollBatch reports the state of a batch submitted with SubmitBatch.
func (c *Client) PollBatch(ctx context.Context, handle ai.BatchHandle) (*ai.BatchStatus, error) {
	batcher, ok := c.adapter.(ai.BatchAdapter)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBatchUnsupported, c.adapter.Name())
	}

	ctx, finish := c.startBatchSpan(ctx, observability.SpanClientBatchPoll,
		observability.String(observability.AttrBatchID, handle.ID),
	)
	status, err := batcher.PollBatch(ctx, handle)
	finish(err)

	return status, err
}

// startBatchSpan opens a span for a batch call when an observer is configured.
// The returned function ends the span and records the outcome.
func (c *Client) startBatchSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, func(error)) {
	if c.observer == nil {
		return ctx, func(error) {}
	}

	attrs = append(attrs,
		observability.String(observability.AttrLLMProvider, c.adapter.Name()),
		observability.String(observability.AttrLLMModel, c.adapter.Model()),
	)
	ctx, span := c.observer.StartSpan(ctx, name, attrs...)
	ctx = observability.ContextWithSpan(ctx, span)
	ctx = observability.ContextWithObserver(ctx, c.observer)
	start := time.Now()

	return ctx, func(err error) {
		status := "success"
		if err != nil {
			status = "error"
			kind := observability.String(observability.AttrErrorType, errorKind(err))
			span.RecordError(err)
			span.SetAttributes(kind)
			span.SetStatus(observability.StatusError, name+" failed")
			c.observer.Error(ctx, name+" failed",
				observability.Error(err),
				kind,
				observability.Duration(observability.AttrDuration, time.Since(start)),
			)
		} else {
			span.SetStatus(observability.StatusOK, "success")
			c.observer.Info(ctx, name+" completed",
				observability.Duration(observability.AttrDuration, time.Since(start)),
			)
		}
		c.observer.Counter(observability.MetricClientBatchCount).Add(ctx, 1,
			observability.String(observability.AttrStatus, status),
			observability.String(observability.AttrLLMProvider, c.adapter.Name()),
		)
		span.End()
	}
}
