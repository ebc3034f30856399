// Package normalize converts provider-neutral completions into the uniform
// [ai.NormalizedResult] record returned to callers.
package normalize

import (
	"github.com/google/uuid"

	"github.com/leofalp/fastprompt/core/parse"
	"github.com/leofalp/fastprompt/providers/ai"
)

// Options tunes a single normalization.
type Options struct {
	// FallbackModel is reported when the vendor response names no model.
	FallbackModel string
	// RepairJSON enables jsonrepair on object-looking output that fails to decode.
	RepairJSON bool
}

// Result builds the normalized record for one completion. It never mutates
// raw or input and never fails: unparsable output is kept as raw text and
// missing usage counts as zero.
//
// The request id is the vendor's; when the vendor supplied none a random
// UUID is generated so every record stays addressable in logs.
func Result(raw ai.RawCompletion, input []ai.Message, opts Options) ai.NormalizedResult {
	requestID := raw.ID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	model := raw.Model
	if model == "" {
		model = opts.FallbackModel
	}

	echoed := make([]ai.Message, len(input))
	copy(echoed, input)

	prompt, completion := Usage(raw.Usage)

	return ai.NormalizedResult{
		RequestID:        requestID,
		Model:            model,
		Input:            echoed,
		Output:           parse.Output(raw.Text, opts.RepairJSON),
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

// Usage returns the prompt and completion counters, zero when usage is absent.
// Negative vendor values are clamped to zero.
func Usage(usage *ai.Usage) (prompt, completion int) {
	if usage == nil {
		return 0, 0
	}
	return max(usage.PromptTokens, 0), max(usage.CompletionTokens, 0)
}
