package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/fastprompt/core/normalize"
	"github.com/leofalp/fastprompt/internal/utils"
	"github.com/leofalp/fastprompt/providers/ai"
	"github.com/leofalp/fastprompt/providers/observability"
)

const batchNamePrefix = "batches/"

// SubmitBatch implements ai.BatchAdapter. Requests are inlined into a single
// batchGenerateContent call, each tagged with a metadata key.
func (a *Adapter) SubmitBatch(ctx context.Context, requests []ai.PromptRequest) (*ai.BatchHandle, error) {
	if len(requests) == 0 {
		return nil, ai.NewValidationError("requests", "batch must contain at least one request")
	}
	for i, request := range requests {
		if err := ai.Validate(request); err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
	}
	if a.cfg.APIKey == "" {
		return nil, ai.NewAuthenticationError(providerName, "GEMINI_API_KEY is not set")
	}

	handle := &ai.BatchHandle{
		Provider: providerName,
		Model:    a.cfg.Model,
		Keys:     make([]string, 0, len(requests)),
		Inputs:   make(map[string][]ai.Message, len(requests)),
	}

	inlined := make([]inlinedRequest, 0, len(requests))
	for i, request := range requests {
		geminiReq, err := requestToGemini(a.cfg, request)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		key := uuid.NewString()
		inlined = append(inlined, inlinedRequest{Request: geminiReq, Metadata: batchItemMetadata{Key: key}})
		handle.Keys = append(handle.Keys, key)
		handle.Inputs[key] = ai.InputMessages(request)
	}

	body := batchGenerateContentRequest{Batch: batchSpec{
		DisplayName: "fastprompt-" + uuid.NewString(),
		InputConfig: batchInputConfig{Requests: inlinedRequests{Requests: inlined}},
	}}
	url := fmt.Sprintf("%s/models/%s:batchGenerateContent", a.baseURL, a.cfg.Model)

	_, operation, err := utils.DoPostSync[batchOperation](ctx, a.client, providerName, url, "", body, a.authHeader())
	if err != nil {
		return nil, err
	}

	handle.ID = operation.batchName()
	if handle.ID == "" {
		return nil, &ai.ProviderError{Provider: providerName, Message: "batch creation returned no name"}
	}
	handle.Created = time.Now().UTC()

	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(
			observability.String(observability.AttrBatchID, handle.ID),
			observability.Int(observability.AttrBatchSize, len(requests)),
			observability.String(observability.AttrBatchState, operation.state()),
		)
	}

	return handle, nil
}

// PollBatch implements ai.BatchAdapter. Inlined responses are only read once
// the batch reached a terminal state.
func (a *Adapter) PollBatch(ctx context.Context, handle ai.BatchHandle) (*ai.BatchStatus, error) {
	if handle.ID == "" {
		return nil, ai.NewValidationError("handle.id", "must not be empty")
	}
	if handle.Provider != "" && handle.Provider != providerName {
		return nil, ai.NewValidationError("handle.provider", fmt.Sprintf("batch belongs to %q, not %q", handle.Provider, providerName))
	}
	if a.cfg.APIKey == "" {
		return nil, ai.NewAuthenticationError(providerName, "GEMINI_API_KEY is not set")
	}

	name := handle.ID
	if !strings.HasPrefix(name, batchNamePrefix) {
		name = batchNamePrefix + name
	}

	_, operation, err := utils.DoGetSync[batchOperation](ctx, a.client, providerName, a.baseURL+"/"+name, "", a.authHeader())
	if err != nil {
		return nil, err
	}

	vendorState := operation.state()
	status := &ai.BatchStatus{
		ID:          name,
		State:       mapBatchState(vendorState),
		VendorState: vendorState,
	}
	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(
			observability.String(observability.AttrBatchID, name),
			observability.String(observability.AttrBatchState, vendorState),
		)
	}
	if !status.State.Done() {
		return status, nil
	}

	if operation.Error != nil {
		status.Failures = append(status.Failures, ai.BatchFailure{StatusCode: operation.Error.Code, Message: operation.Error.Message})
	}
	if operation.Response == nil || operation.Response.InlinedResponses == nil {
		return status, nil
	}

	opts := a.normalizeOptions()
	if handle.Model != "" {
		opts.FallbackModel = handle.Model
	}

	byKey := make(map[string]ai.NormalizedResult)
	var unkeyed []ai.NormalizedResult
	for i, item := range operation.Response.InlinedResponses.InlinedResponses {
		key := ""
		if item.Metadata != nil {
			key = item.Metadata.Key
		}
		if key == "" && i < len(handle.Keys) {
			// Inlined responses keep submission order when metadata is dropped.
			key = handle.Keys[i]
		}

		switch {
		case item.Error != nil:
			status.Failures = append(status.Failures, ai.BatchFailure{Key: key, StatusCode: item.Error.Code, Message: item.Error.Message})
		case item.Response == nil:
			status.Failures = append(status.Failures, ai.BatchFailure{Key: key, Message: "missing response"})
		case len(item.Response.Candidates) == 0:
			status.Failures = append(status.Failures, ai.BatchFailure{Key: key, Message: emptyResponseReason(*item.Response)})
		default:
			result := normalize.Result(geminiToRaw(*item.Response), handle.Inputs[key], opts)
			if key == "" {
				unkeyed = append(unkeyed, result)
				continue
			}
			byKey[key] = result
		}
	}

	for _, key := range handle.Keys {
		if result, ok := byKey[key]; ok {
			status.Results = append(status.Results, result)
			delete(byKey, key)
		}
	}
	for _, result := range byKey {
		status.Results = append(status.Results, result)
	}
	status.Results = append(status.Results, unkeyed...)

	return status, nil
}

// batchName returns the batches/{id} resource name of an operation.
func (o *batchOperation) batchName() string {
	if o.Metadata != nil && o.Metadata.Name != "" {
		return o.Metadata.Name
	}
	return o.Name
}

func (o *batchOperation) state() string {
	if o.Metadata != nil && o.Metadata.State != "" {
		return o.Metadata.State
	}
	if o.Done {
		if o.Error != nil {
			return "BATCH_STATE_FAILED"
		}
		return "BATCH_STATE_SUCCEEDED"
	}
	return "BATCH_STATE_PENDING"
}
