package client

import (
	"context"
	"errors"
	"time"

	"github.com/leofalp/fastprompt/internal/utils"
	"github.com/leofalp/fastprompt/providers/ai"
	"github.com/leofalp/fastprompt/providers/observability"
)

// responsePreviewLen bounds the output preview attached to the completion log.
const responsePreviewLen = 100

// NewObservabilityMiddleware creates a Middleware that provides tracing spans,
// metrics and log events for every prompt request.
//
// The span and the observer are injected into the context before calling next,
// so adapters can retrieve them via [observability.SpanFromContext] and
// [observability.ObserverFromContext].
//
// [New] prepends it automatically when [WithObserver] is provided, making it the
// outermost wrapper: it observes the final outcome, after any timeout
// middleware.
func NewObservabilityMiddleware(observer observability.Provider, provider, model string) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.PromptRequest) (*ai.NormalizedResult, error) {
			ctx, span := observer.StartSpan(ctx, observability.SpanClientRequest,
				observability.String(observability.AttrLLMProvider, provider),
				observability.String(observability.AttrLLMModel, model),
				observability.Bool(observability.AttrLLMVision, request.Image != nil),
			)
			ctx = observability.ContextWithSpan(ctx, span)
			ctx = observability.ContextWithObserver(ctx, observer)

			observer.Debug(ctx, "llm request",
				observability.String(observability.AttrLLMProvider, provider),
				observability.String(observability.AttrLLMModel, model),
			)

			start := time.Now()
			result, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				kind := observability.String(observability.AttrErrorType, errorKind(err))
				span.RecordError(err)
				span.SetAttributes(kind)
				span.SetStatus(observability.StatusError, "llm request failed")
				span.End()

				observer.Error(ctx, "llm request failed",
					observability.Error(err),
					kind,
					observability.Duration(observability.AttrDuration, elapsed),
					observability.String(observability.AttrLLMProvider, provider),
					observability.String(observability.AttrLLMModel, model),
				)
				observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
					observability.String(observability.AttrStatus, "error"),
					kind,
					observability.String(observability.AttrLLMModel, model),
				)

				return nil, err
			}

			recordObsSuccess(ctx, span, observer, result, elapsed, provider)

			return result, nil
		}
	}
}

// recordObsSuccess writes all success-path observability data: duration
// histogram, request and token counters, span attributes and an INFO log, then
// ends the span.
func recordObsSuccess(
	ctx context.Context,
	span observability.Span,
	observer observability.Provider,
	result *ai.NormalizedResult,
	elapsed time.Duration,
	provider string,
) {
	modelAttr := observability.String(observability.AttrLLMModel, result.Model)

	observer.Histogram(observability.MetricClientRequestDuration).Record(ctx, elapsed.Seconds(), modelAttr)
	observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
		observability.String(observability.AttrStatus, "success"),
		modelAttr,
	)
	observer.Counter(observability.MetricClientTokensTotal).Add(ctx, int64(result.TotalTokens), modelAttr)
	observer.Counter(observability.MetricClientTokensPrompt).Add(ctx, int64(result.PromptTokens), modelAttr)
	observer.Counter(observability.MetricClientTokensCompletion).Add(ctx, int64(result.CompletionTokens), modelAttr)

	span.SetAttributes(
		observability.String(observability.AttrLLMRequestID, result.RequestID),
		observability.Int(observability.AttrLLMTokensTotal, result.TotalTokens),
		observability.Int(observability.AttrLLMTokensPrompt, result.PromptTokens),
		observability.Int(observability.AttrLLMTokensCompletion, result.CompletionTokens),
	)

	observer.Info(ctx, "llm request completed",
		observability.String(observability.AttrLLMProvider, provider),
		modelAttr,
		observability.String(observability.AttrLLMRequestID, result.RequestID),
		observability.Duration(observability.AttrDuration, elapsed),
		observability.Int(observability.AttrLLMTokensPrompt, result.PromptTokens),
		observability.Int(observability.AttrLLMTokensCompletion, result.CompletionTokens),
		observability.Int(observability.AttrLLMTokensTotal, result.TotalTokens),
		observability.String("response", utils.TruncateString(result.OutputText(), responsePreviewLen)),
	)

	span.SetStatus(observability.StatusOK, "success")
	span.End()
}

// errorKind names the error category recorded under AttrErrorType.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ai.ErrValidation):
		return "validation"
	case errors.Is(err, ai.ErrAuthentication):
		return "authentication"
	case errors.Is(err, ai.ErrProvider):
		return "provider"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return "unknown"
}
