package openai

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/leofalp/fastprompt/core/normalize"
	"github.com/leofalp/fastprompt/internal/utils"
	"github.com/leofalp/fastprompt/providers/ai"
	"github.com/leofalp/fastprompt/providers/observability"
)

const (
	providerName            = "openai"
	defaultBaseURL          = "https://api.openai.com/v1"
	defaultModel            = "gpt-4o-mini"
	defaultTimeout          = 60 * time.Second
	chatCompletionsEndpoint = "/chat/completions"
)

// Adapter implements ai.ChatAdapter and ai.BatchAdapter for the OpenAI chat
// completions API. Vision requests use the same endpoint with image_url parts.
type Adapter struct {
	cfg     ai.Config
	baseURL string
	client  *http.Client
}

var _ ai.BatchAdapter = (*Adapter)(nil)

// New creates an adapter from cfg. Empty fields take defaults: model
// gpt-4o-mini, base URL https://api.openai.com/v1, 60s timeout. A missing API
// key is reported by Request, not here.
func New(cfg ai.Config) *Adapter {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Adapter{
		cfg:     cfg,
		baseURL: baseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// WithHttpClient sets a custom HTTP client. Its own timeout replaces cfg.Timeout.
func (a *Adapter) WithHttpClient(httpClient *http.Client) *Adapter {
	a.client = httpClient
	return a
}

// Name implements ai.ChatAdapter.
func (a *Adapter) Name() string { return providerName }

// Model implements ai.ChatAdapter.
func (a *Adapter) Model() string { return a.cfg.Model }

// Request implements ai.ChatAdapter.
func (a *Adapter) Request(ctx context.Context, request ai.PromptRequest) (*ai.NormalizedResult, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	if err := ai.Validate(request); err != nil {
		return nil, err
	}
	if a.cfg.APIKey == "" {
		return nil, ai.NewAuthenticationError(providerName, "OPENAI_API_KEY is not set")
	}

	chatRequest, err := requestToChatCompletion(a.cfg.Model, a.cfg, request)
	if err != nil {
		return nil, err
	}

	url := a.baseURL + chatCompletionsEndpoint
	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, providerName),
			observability.String(observability.AttrLLMEndpoint, url),
			observability.String(observability.AttrLLMModel, a.cfg.Model),
		)
		defer span.AddEvent(observability.EventLLMRequestEnd)
	}
	if observer != nil {
		observer.Trace(ctx, "OpenAI adapter sending request",
			observability.String(observability.AttrLLMEndpoint, url),
			observability.String(observability.AttrLLMModel, a.cfg.Model),
			observability.Bool(observability.AttrLLMVision, request.Image != nil),
		)
	}

	httpResponse, resp, err := utils.DoPostSync[chatCompletionResponse](ctx, a.client, providerName, url, a.cfg.APIKey, chatRequest)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, &ai.ProviderError{Provider: providerName, StatusCode: httpResponse.StatusCode, Message: "no choices in response"}
	}

	result := normalize.Result(chatCompletionToRaw(*resp), ai.InputMessages(request), a.normalizeOptions())

	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMRequestID, result.RequestID),
			observability.Int(observability.AttrHTTPStatusCode, httpResponse.StatusCode),
		)
		span.AddEvent(observability.EventTokensReceived,
			observability.Int(observability.AttrLLMTokensTotal, result.TotalTokens),
		)
	}

	return &result, nil
}

func (a *Adapter) normalizeOptions() normalize.Options {
	return normalize.Options{FallbackModel: a.cfg.Model, RepairJSON: a.cfg.RepairJSON}
}
