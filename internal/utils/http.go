package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"time"

	"github.com/leofalp/fastprompt/providers/ai"
	"github.com/leofalp/fastprompt/providers/observability"
)

// errorBodyPreview bounds the vendor body carried by provider errors.
const errorBodyPreview = 2000

// HeaderOption is an extra header set on an outgoing request. It overrides the
// defaults (Content-Type, Authorization) when the key collides.
type HeaderOption struct {
	Key   string
	Value string
}

// MultipartFile is the file part of a multipart upload.
type MultipartFile struct {
	Field   string
	Name    string
	Content []byte
}

// DoPostSync performs a synchronous HTTP POST with a JSON body and decodes the
// JSON response into OutputStruct.
//
// Error Handling Strategy:
//   - 401/403 become *ai.AuthenticationError
//   - other non-2xx statuses, transport failures and timeouts become *ai.ProviderError
//   - a 2xx body that does not decode is a *ai.ProviderError carrying a preview
//
// The response body is always closed; close errors are logged and never
// override the primary error.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, provider, url, apiKey string, body any, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, respBody, err := do(ctx, client, provider, req, apiKey, headers)
	if err != nil {
		return res, nil, err
	}
	out, err := decode[OutputStruct](provider, res, respBody)
	return res, out, err
}

// DoGetSync performs a synchronous HTTP GET and decodes the JSON response.
func DoGetSync[OutputStruct any](ctx context.Context, client *http.Client, provider, url, apiKey string, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	respBody, res, err := DoGetRaw(ctx, client, provider, url, apiKey, headers...)
	if err != nil {
		return res, nil, err
	}
	out, err := decode[OutputStruct](provider, res, respBody)
	return res, out, err
}

// DoGetRaw performs a synchronous HTTP GET and returns the raw response body.
func DoGetRaw(ctx context.Context, client *http.Client, provider, url, apiKey string, headers ...HeaderOption) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}
	res, respBody, err := do(ctx, client, provider, req, apiKey, headers)
	return respBody, res, err
}

// DoPostMultipart uploads form fields plus one file and decodes the JSON response.
func DoPostMultipart[OutputStruct any](ctx context.Context, client *http.Client, provider, url, apiKey string, fields map[string]string, file MultipartFile, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, nil, fmt.Errorf("error writing form field %s: %w", key, err)
		}
	}

	part, err := writer.CreateFormFile(file.Field, file.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating form file: %w", err)
	}
	if _, err = part.Write(file.Content); err != nil {
		return nil, nil, fmt.Errorf("error writing form file: %w", err)
	}
	if err = writer.Close(); err != nil {
		return nil, nil, fmt.Errorf("error closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res, respBody, err := do(ctx, client, provider, req, apiKey, headers)
	if err != nil {
		return res, nil, err
	}
	out, err := decode[OutputStruct](provider, res, respBody)
	return res, out, err
}

// do sends req, reads the whole body and maps failures to the ai error kinds.
func do(ctx context.Context, client *http.Client, provider string, req *http.Request, apiKey string, headers []HeaderOption) (*http.Response, []byte, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	if span != nil {
		span.AddEvent("http.request.prepared",
			observability.String(observability.AttrHTTPMethod, req.Method),
			observability.String(observability.AttrHTTPURL, RedactURL(req.URL.String())),
			observability.Int64(observability.AttrHTTPRequestBodySize, req.ContentLength),
		)
	}

	requestStart := time.Now()
	res, err := httpClient.Do(req)
	requestDuration := time.Since(requestStart)

	if err != nil {
		if span != nil {
			span.AddEvent("http.request.error",
				observability.Error(err),
				observability.Duration("http.request.duration", requestDuration),
			)
		}
		return nil, nil, &ai.ProviderError{
			Provider: provider,
			Message:  "error sending request",
			Timeout:  isTimeout(err),
			Cause:    err,
		}
	}
	defer func(Body io.ReadCloser) {
		if closeErr := Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr.Error(), "url", RedactURL(req.URL.String()))
		}
	}(res.Body)

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return res, nil, &ai.ProviderError{
			Provider:   provider,
			StatusCode: res.StatusCode,
			Message:    "error reading response body",
			Timeout:    isTimeout(err),
			Cause:      err,
		}
	}

	if span != nil {
		span.AddEvent("http.response.received",
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)),
			observability.Duration("http.request.duration", requestDuration),
		)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, respBody, ai.ErrorFromStatus(provider, res.StatusCode, TruncateString(string(respBody), errorBodyPreview))
	}

	return res, respBody, nil
}

func decode[OutputStruct any](provider string, res *http.Response, body []byte) (*OutputStruct, error) {
	var out OutputStruct
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &ai.ProviderError{
			Provider:   provider,
			StatusCode: res.StatusCode,
			Message:    "error unmarshaling response body",
			Body:       TruncateString(string(body), DefaultMaxStringLength),
			Cause:      err,
		}
	}
	return &out, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
