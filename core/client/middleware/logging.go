package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/leofalp/fastprompt/core/client"
	"github.com/leofalp/fastprompt/internal/utils"
	"github.com/leofalp/fastprompt/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits per request.
type LogLevel int

const (
	// LogLevelMinimal logs only the request id, model, duration and token counts.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds whether the request carried an image and whether the
	// output parsed as JSON. This is the recommended default.
	LogLevelStandard

	// LogLevelVerbose adds the input messages and the output, each truncated to
	// 500 characters.
	//
	// WARNING: DO NOT use LogLevelVerbose in production. It logs raw prompt and
	// response text, which may contain sensitive user data.
	LogLevelVerbose
)

// truncateLen is the maximum payload length included in verbose log output.
const truncateLen = 500

// NewLoggingMiddleware creates a Middleware that emits structured slog entries
// before and after every adapter call. The completion entry carries the fields
// of the normalized record so every call leaves an audit line.
//
// The logger parameter must not be nil. Use slog.Default() if you have not
// configured a custom logger.
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.PromptRequest) (*ai.NormalizedResult, error) {
			logger.InfoContext(ctx, "llm request", buildRequestAttrs(request, level)...)

			start := time.Now()
			result, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "llm request failed",
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.InfoContext(ctx, "llm request completed", buildResultAttrs(result, elapsed, level)...)

			return result, nil
		}
	}
}

// buildRequestAttrs returns slog attributes for an outgoing prompt request.
func buildRequestAttrs(request ai.PromptRequest, level LogLevel) []any {
	var attrs []any

	if level >= LogLevelStandard {
		attrs = append(attrs, slog.Bool("vision", request.Image != nil))
	}

	if level >= LogLevelVerbose {
		attrs = append(attrs,
			slog.String("system_prompt", utils.TruncateString(request.SystemPrompt, truncateLen)),
			slog.String("user_prompt", utils.TruncateString(request.UserPrompt, truncateLen)),
		)
		if request.Image != nil {
			attrs = append(attrs, slog.String("image", request.Image.String()))
		}
	}

	return attrs
}

// buildResultAttrs returns slog attributes for a normalized result.
func buildResultAttrs(result *ai.NormalizedResult, elapsed time.Duration, level LogLevel) []any {
	attrs := []any{
		slog.String("request_id", result.RequestID),
		slog.String("llm_model", result.Model),
		slog.Duration("duration", elapsed),
		slog.Int("prompt_tokens", result.PromptTokens),
		slog.Int("completion_tokens", result.CompletionTokens),
		slog.Int("total_tokens", result.TotalTokens),
	}

	if level >= LogLevelStandard {
		_, isText := result.Output.(string)
		attrs = append(attrs, slog.Bool("structured_output", !isText))
	}

	if level >= LogLevelVerbose {
		attrs = append(attrs,
			slog.String("input", utils.TruncateString(utils.JSONToString(result.Input), truncateLen)),
			slog.String("output", utils.TruncateString(result.OutputText(), truncateLen)),
		)
	}

	return attrs
}
