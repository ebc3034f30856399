package gemini

import (
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/leofalp/fastprompt/internal/utils"
	"github.com/leofalp/fastprompt/providers/ai"
)

const (
	defaultMaxOutputTokens = 4096
	defaultTemperature     = 1e-4
	defaultTopP            = 0.95
	defaultRemoteMimeType  = "image/jpeg"
	blockThreshold         = "BLOCK_MEDIUM_AND_ABOVE"
)

// safetyCategories are the harm categories every request filters at
// blockThreshold.
var safetyCategories = []string{
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_HARASSMENT",
}

// requestToGemini converts a prompt request to a generateContentRequest.
// The system prompt travels as systemInstruction; the image, if any, precedes
// the user text in the single user turn.
func requestToGemini(cfg ai.Config, request ai.PromptRequest) (generateContentRequest, error) {
	user := content{Role: "user"}
	if request.Image != nil {
		imagePart, err := imageToPart(request.Image)
		if err != nil {
			return generateContentRequest{}, err
		}
		user.Parts = append(user.Parts, imagePart)
	}
	user.Parts = append(user.Parts, part{Text: request.UserPrompt})

	return generateContentRequest{
		Contents: []content{user},
		SystemInstruction: &systemInstruction{
			Parts: []part{{Text: request.SystemPrompt}},
		},
		GenerationConfig: buildGenerationConfig(cfg),
		SafetySettings:   buildSafetySettings(),
	}, nil
}

// imageToPart inlines local and base64 images and references remote ones by URI.
func imageToPart(image *ai.ImageRef) (part, error) {
	if image.IsRemote() {
		mimeType := image.MimeType
		if mimeType == "" {
			if u, err := url.Parse(image.URL); err == nil {
				mimeType = mime.TypeByExtension(strings.ToLower(path.Ext(u.Path)))
			}
		}
		if mimeType == "" {
			mimeType = defaultRemoteMimeType
		}
		return part{FileData: &fileData{MimeType: mimeType, FileURI: image.URL}}, nil
	}

	mimeType, data, err := image.Inline()
	if err != nil {
		return part{}, err
	}
	return part{InlineData: &inlineData{MimeType: mimeType, Data: data}}, nil
}

func buildGenerationConfig(cfg ai.Config) *generationConfig {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}
	temperature := defaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	return &generationConfig{
		Temperature:     &temperature,
		TopP:            utils.Ptr(defaultTopP),
		MaxOutputTokens: &maxTokens,
	}
}

func buildSafetySettings() []safetySetting {
	settings := make([]safetySetting, 0, len(safetyCategories))
	for _, category := range safetyCategories {
		settings = append(settings, safetySetting{Category: category, Threshold: blockThreshold})
	}
	return settings
}

// geminiToRaw extracts the first candidate's text and the usage counters.
// Thought parts are skipped, but their tokens count as completion tokens since
// they are billed as output.
func geminiToRaw(resp generateContentResponse) ai.RawCompletion {
	raw := ai.RawCompletion{
		ID:    resp.ResponseID,
		Model: resp.ModelVersion,
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		var text strings.Builder
		for _, p := range resp.Candidates[0].Content.Parts {
			if p.Text != "" && !p.Thought {
				text.WriteString(p.Text)
			}
		}
		raw.Text = text.String()
	}

	if resp.UsageMetadata != nil {
		raw.Usage = &ai.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount + resp.UsageMetadata.ThoughtsTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}
	return raw
}

// emptyResponseReason explains a response without candidates.
func emptyResponseReason(resp generateContentResponse) string {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "prompt blocked: " + resp.PromptFeedback.BlockReason
	}
	return "no candidates in response"
}

// mapBatchState folds BATCH_STATE_* (and the older JOB_STATE_*) values into the
// neutral states.
func mapBatchState(state string) ai.BatchState {
	_, suffix, found := strings.Cut(state, "_STATE_")
	if !found {
		suffix = state
	}
	switch suffix {
	case "SUCCEEDED":
		return ai.BatchCompleted
	case "FAILED":
		return ai.BatchFailed
	case "CANCELLED":
		return ai.BatchCancelled
	case "EXPIRED":
		return ai.BatchExpired
	default: // PENDING, RUNNING, UNSPECIFIED
		return ai.BatchPending
	}
}
