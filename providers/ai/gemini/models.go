package gemini

/*
	GEMINI API - REQUEST TYPES
*/

// generateContentRequest represents the request to Gemini's generateContent endpoint.
type generateContentRequest struct {
	Contents          []content          `json:"contents"`
	SystemInstruction *systemInstruction `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig  `json:"generationConfig,omitempty"`
	SafetySettings    []safetySetting    `json:"safetySettings,omitempty"`
}

// systemInstruction represents the system instruction for Gemini.
type systemInstruction struct {
	Parts []part `json:"parts"`
}

// content represents a content block with role and parts.
type content struct {
	Role  string `json:"role,omitempty"` // "user" or "model"
	Parts []part `json:"parts"`
}

// part represents a content part: text, inline image bytes or a URI reference.
type part struct {
	Text       string      `json:"text,omitempty"`
	Thought    bool        `json:"thought,omitempty"` // true if this part contains a thinking summary
	InlineData *inlineData `json:"inlineData,omitempty"`
	FileData   *fileData   `json:"fileData,omitempty"`
}

// inlineData represents base64-encoded image bytes.
type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// fileData represents an image referenced by URI.
type fileData struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

// generationConfig represents generation parameters for Gemini.
type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

// safetySetting represents a safety setting for content filtering.
type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

/*
	GEMINI API - RESPONSE TYPES
*/

// generateContentResponse represents the response from Gemini's generateContent endpoint.
type generateContentResponse struct {
	Candidates     []candidate     `json:"candidates,omitempty"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *usageMetadata  `json:"usageMetadata,omitempty"`
	ModelVersion   string          `json:"modelVersion,omitempty"`
	ResponseID     string          `json:"responseId,omitempty"`
}

// candidate represents a response candidate.
type candidate struct {
	Content      *content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
	Index        int      `json:"index,omitempty"`
}

// promptFeedback is set when the prompt itself was blocked.
type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// usageMetadata represents token usage information.
type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount int `json:"candidatesTokenCount,omitempty"`
	TotalTokenCount      int `json:"totalTokenCount,omitempty"`
	ThoughtsTokenCount   int `json:"thoughtsTokenCount,omitempty"`
}

/*
	GEMINI BATCH API
*/

// batchGenerateContentRequest is the body of models/{model}:batchGenerateContent.
type batchGenerateContentRequest struct {
	Batch batchSpec `json:"batch"`
}

type batchSpec struct {
	DisplayName string           `json:"display_name"`
	InputConfig batchInputConfig `json:"input_config"`
}

type batchInputConfig struct {
	Requests inlinedRequests `json:"requests"`
}

type inlinedRequests struct {
	Requests []inlinedRequest `json:"requests"`
}

type inlinedRequest struct {
	Request  generateContentRequest `json:"request"`
	Metadata batchItemMetadata      `json:"metadata"`
}

type batchItemMetadata struct {
	Key string `json:"key"`
}

// batchOperation is returned both by batch creation and by polling.
type batchOperation struct {
	Name     string         `json:"name"`
	Metadata *batchMetadata `json:"metadata,omitempty"`
	Done     bool           `json:"done,omitempty"`
	Error    *rpcStatus     `json:"error,omitempty"`
	Response *batchOutput   `json:"response,omitempty"`
}

type batchMetadata struct {
	Name  string `json:"name"`
	Model string `json:"model,omitempty"`
	State string `json:"state"`
}

type batchOutput struct {
	InlinedResponses *inlinedResponses `json:"inlinedResponses,omitempty"`
}

type inlinedResponses struct {
	InlinedResponses []inlinedResponse `json:"inlinedResponses"`
}

// inlinedResponse holds exactly one of Response or Error.
type inlinedResponse struct {
	Response *generateContentResponse `json:"response,omitempty"`
	Error    *rpcStatus               `json:"error,omitempty"`
	Metadata *batchItemMetadata       `json:"metadata,omitempty"`
}

type rpcStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}
