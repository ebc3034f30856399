package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/fastprompt/core/normalize"
	"github.com/leofalp/fastprompt/internal/utils"
	"github.com/leofalp/fastprompt/providers/ai"
	"github.com/leofalp/fastprompt/providers/observability"
)

const (
	filesEndpoint         = "/files"
	batchesEndpoint       = "/batches"
	batchTargetEndpoint   = "/v1/chat/completions"
	batchCompletionWindow = "24h"
	batchFileName         = "batch.jsonl"
)

// SubmitBatch implements ai.BatchAdapter. The requests are written as a JSONL
// file, uploaded with purpose "batch" and referenced by a new batch job on the
// chat completions endpoint.
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
		return nil, ai.NewAuthenticationError(providerName, "OPENAI_API_KEY is not set")
	}

	handle := &ai.BatchHandle{
		Provider: providerName,
		Model:    a.cfg.Model,
		Keys:     make([]string, 0, len(requests)),
		Inputs:   make(map[string][]ai.Message, len(requests)),
	}

	var file bytes.Buffer
	encoder := json.NewEncoder(&file)
	for i, request := range requests {
		body, err := requestToChatCompletion(a.cfg.Model, a.cfg, request)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		key := uuid.NewString()
		line := batchInputLine{CustomID: key, Method: http.MethodPost, URL: batchTargetEndpoint, Body: body}
		if err = encoder.Encode(line); err != nil {
			return nil, fmt.Errorf("error encoding batch line %d: %w", i, err)
		}
		handle.Keys = append(handle.Keys, key)
		handle.Inputs[key] = ai.InputMessages(request)
	}

	_, uploaded, err := utils.DoPostMultipart[fileObject](ctx, a.client, providerName, a.baseURL+filesEndpoint, a.cfg.APIKey,
		map[string]string{"purpose": "batch"},
		utils.MultipartFile{Field: "file", Name: batchFileName, Content: file.Bytes()},
	)
	if err != nil {
		return nil, err
	}

	_, batch, err := utils.DoPostSync[batchObject](ctx, a.client, providerName, a.baseURL+batchesEndpoint, a.cfg.APIKey, createBatchRequest{
		InputFileID:      uploaded.ID,
		Endpoint:         batchTargetEndpoint,
		CompletionWindow: batchCompletionWindow,
	})
	if err != nil {
		return nil, err
	}

	handle.ID = batch.ID
	handle.Created = time.Now().UTC()

	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(
			observability.String(observability.AttrBatchID, batch.ID),
			observability.Int(observability.AttrBatchSize, len(requests)),
			observability.String(observability.AttrBatchState, batch.Status),
		)
	}

	return handle, nil
}

// PollBatch implements ai.BatchAdapter. Output and error files are only
// downloaded once the batch left the pending states.
func (a *Adapter) PollBatch(ctx context.Context, handle ai.BatchHandle) (*ai.BatchStatus, error) {
	if handle.ID == "" {
		return nil, ai.NewValidationError("handle.id", "must not be empty")
	}
	if handle.Provider != "" && handle.Provider != providerName {
		return nil, ai.NewValidationError("handle.provider", fmt.Sprintf("batch belongs to %q, not %q", handle.Provider, providerName))
	}
	if a.cfg.APIKey == "" {
		return nil, ai.NewAuthenticationError(providerName, "OPENAI_API_KEY is not set")
	}

	_, batch, err := utils.DoGetSync[batchObject](ctx, a.client, providerName, a.baseURL+batchesEndpoint+"/"+handle.ID, a.cfg.APIKey)
	if err != nil {
		return nil, err
	}

	status := &ai.BatchStatus{
		ID:          batch.ID,
		State:       mapBatchStatus(batch.Status),
		VendorState: batch.Status,
	}
	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(
			observability.String(observability.AttrBatchID, batch.ID),
			observability.String(observability.AttrBatchState, batch.Status),
		)
	}
	if !status.State.Done() {
		return status, nil
	}

	if batch.Errors != nil {
		for _, batchErr := range batch.Errors.Data {
			status.Failures = append(status.Failures, ai.BatchFailure{Message: batchErrorMessage(batchErr)})
		}
	}

	byKey := make(map[string]ai.NormalizedResult)
	for _, fileID := range []string{batch.OutputFileID, batch.ErrorFileID} {
		if fileID == "" {
			continue
		}
		lines, err := a.downloadOutput(ctx, fileID)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			result, failure := a.outputLineToResult(line, handle)
			if failure != nil {
				status.Failures = append(status.Failures, *failure)
				continue
			}
			byKey[line.CustomID] = result
		}
	}

	for _, key := range handle.Keys {
		if result, ok := byKey[key]; ok {
			status.Results = append(status.Results, result)
			delete(byKey, key)
		}
	}
	// Handles built elsewhere may lack keys; keep whatever the vendor returned.
	for _, result := range byKey {
		status.Results = append(status.Results, result)
	}

	return status, nil
}

func (a *Adapter) downloadOutput(ctx context.Context, fileID string) ([]batchOutputLine, error) {
	body, res, err := utils.DoGetRaw(ctx, a.client, providerName, a.baseURL+filesEndpoint+"/"+fileID+"/content", a.cfg.APIKey)
	if err != nil {
		return nil, err
	}

	var lines []batchOutputLine
	decoder := json.NewDecoder(bytes.NewReader(body))
	for {
		var line batchOutputLine
		err = decoder.Decode(&line)
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, &ai.ProviderError{
				Provider:   providerName,
				StatusCode: res.StatusCode,
				Message:    "error decoding batch output file " + fileID,
				Cause:      err,
			}
		}
		lines = append(lines, line)
	}
}

// outputLineToResult normalizes one successful line or describes why it failed.
func (a *Adapter) outputLineToResult(line batchOutputLine, handle ai.BatchHandle) (ai.NormalizedResult, *ai.BatchFailure) {
	failure := &ai.BatchFailure{Key: line.CustomID}

	if line.Error != nil {
		failure.Message = batchErrorMessage(*line.Error)
		return ai.NormalizedResult{}, failure
	}
	if line.Response == nil {
		failure.Message = "missing response"
		return ai.NormalizedResult{}, failure
	}

	failure.StatusCode = line.Response.StatusCode
	if line.Response.StatusCode != http.StatusOK {
		failure.Message = vendorErrorMessage(line.Response.Body)
		return ai.NormalizedResult{}, failure
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(line.Response.Body, &resp); err != nil {
		failure.Message = "error unmarshaling response body: " + err.Error()
		return ai.NormalizedResult{}, failure
	}
	if len(resp.Choices) == 0 {
		failure.Message = "no choices in response"
		return ai.NormalizedResult{}, failure
	}

	raw := chatCompletionToRaw(resp)
	if raw.ID == "" {
		raw.ID = line.Response.RequestID
	}
	opts := a.normalizeOptions()
	if handle.Model != "" {
		opts.FallbackModel = handle.Model
	}
	return normalize.Result(raw, handle.Inputs[line.CustomID], opts), nil
}

func batchErrorMessage(batchErr batchError) string {
	msg := batchErr.Message
	if batchErr.Code != "" {
		msg = batchErr.Code + ": " + msg
	}
	if batchErr.Line != nil {
		msg = fmt.Sprintf("line %d: %s", *batchErr.Line, msg)
	}
	return msg
}

// vendorErrorMessage extracts error.message from an OpenAI error body.
func vendorErrorMessage(body json.RawMessage) string {
	var envelope struct {
		Error *batchError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return batchErrorMessage(*envelope.Error)
	}
	return utils.TruncateString(string(body), utils.DefaultMaxStringLength)
}
