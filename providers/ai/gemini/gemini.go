package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/leofalp/fastprompt/core/normalize"
	"github.com/leofalp/fastprompt/internal/utils"
	"github.com/leofalp/fastprompt/providers/ai"
	"github.com/leofalp/fastprompt/providers/observability"
)

const (
	providerName   = "gemini"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-pro"
	defaultTimeout = 60 * time.Second
	apiKeyHeader   = "x-goog-api-key"
)

// Adapter implements ai.ChatAdapter and ai.BatchAdapter for Google's Gemini API.
type Adapter struct {
	cfg     ai.Config
	baseURL string
	client  *http.Client
}

var _ ai.BatchAdapter = (*Adapter)(nil)

// New creates an adapter from cfg. Empty fields take defaults: model
// gemini-1.5-pro, base URL https://generativelanguage.googleapis.com/v1beta,
// 60s timeout.
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

// WithHttpClient sets a custom HTTP client.
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
		return nil, ai.NewAuthenticationError(providerName, "GEMINI_API_KEY is not set")
	}

	geminiReq, err := requestToGemini(a.cfg, request)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", a.baseURL, a.cfg.Model)
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
		observer.Trace(ctx, "Gemini adapter sending request",
			observability.String(observability.AttrLLMEndpoint, url),
			observability.String(observability.AttrLLMModel, a.cfg.Model),
			observability.Bool(observability.AttrLLMVision, request.Image != nil),
		)
	}

	// The key travels in a header; the empty apiKey disables Bearer auth.
	httpResponse, resp, err := utils.DoPostSync[generateContentResponse](ctx, a.client, providerName, url, "", geminiReq, a.authHeader())
	if err != nil {
		if observer != nil {
			observer.Trace(ctx, "HTTP request failed", observability.Error(err))
		}
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, &ai.ProviderError{Provider: providerName, StatusCode: httpResponse.StatusCode, Message: emptyResponseReason(*resp)}
	}

	result := normalize.Result(geminiToRaw(*resp), ai.InputMessages(request), a.normalizeOptions())

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

func (a *Adapter) authHeader() utils.HeaderOption {
	return utils.HeaderOption{Key: apiKeyHeader, Value: a.cfg.APIKey}
}
