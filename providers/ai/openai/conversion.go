package openai

import (
	"github.com/leofalp/fastprompt/providers/ai"
)

// requestToChatCompletion builds the native message list for one prompt. Local
// and inline images are sent as base64 data URLs; failures to read them are
// validation errors raised before any network call.
func requestToChatCompletion(model string, cfg ai.Config, request ai.PromptRequest) (chatCompletionRequest, error) {
	var userContent any = request.UserPrompt
	if request.Image != nil {
		imageURL, err := request.Image.DataURL()
		if err != nil {
			return chatCompletionRequest{}, err
		}
		userContent = []contentPart{
			{Type: "text", Text: request.UserPrompt},
			{Type: "image_url", ImageURL: &contentPartImage{URL: imageURL}},
		}
	}

	out := chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: string(ai.RoleSystem), Content: request.SystemPrompt},
			{Role: string(ai.RoleUser), Content: userContent},
		},
		Temperature: cfg.Temperature,
	}
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		out.MaxTokens = &maxTokens
	}
	return out, nil
}

// chatCompletionToRaw extracts the first choice and the usage counters.
// A refusal is surfaced as the output text so callers see why nothing came back.
func chatCompletionToRaw(resp chatCompletionResponse) ai.RawCompletion {
	raw := ai.RawCompletion{
		ID:    resp.ID,
		Model: resp.Model,
	}

	if len(resp.Choices) > 0 {
		message := resp.Choices[0].Message
		if message.Content != nil {
			raw.Text = *message.Content
		}
		if raw.Text == "" && message.Refusal != "" {
			raw.Text = message.Refusal
		}
	}

	if resp.Usage != nil {
		raw.Usage = &ai.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return raw
}

// mapBatchStatus folds the OpenAI batch lifecycle into the neutral states.
func mapBatchStatus(status string) ai.BatchState {
	switch status {
	case "completed":
		return ai.BatchCompleted
	case "failed":
		return ai.BatchFailed
	case "expired":
		return ai.BatchExpired
	case "cancelled":
		return ai.BatchCancelled
	default: // validating, in_progress, finalizing, cancelling
		return ai.BatchPending
	}
}
