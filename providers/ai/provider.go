package ai

import (
	"context"
	"strings"
	"time"
)

// ChatAdapter is the capability every provider variant implements: turn one
// prompt request into one normalized result through a single synchronous
// vendor call. Vision is the same call with PromptRequest.Image set.
type ChatAdapter interface {
	// Request validates the prompt, calls the vendor once and normalizes the
	// response. Returns a *ValidationError or *AuthenticationError before any
	// network call, and a *ProviderError when the vendor call fails.
	Request(ctx context.Context, request PromptRequest) (*NormalizedResult, error)

	// Name returns the provider identifier (e.g. "openai").
	Name() string

	// Model returns the configured model identifier.
	Model() string
}

// BatchAdapter is implemented by adapters whose vendor offers discounted
// asynchronous batch processing. Callers detect support via type assertion.
type BatchAdapter interface {
	ChatAdapter

	// SubmitBatch uploads all requests as one vendor batch and returns a
	// handle to poll later. Every request is validated before submission.
	SubmitBatch(ctx context.Context, requests []PromptRequest) (*BatchHandle, error)

	// PollBatch reports the batch state. Results are only populated once the
	// vendor confirms completion; before that the state is BatchPending.
	PollBatch(ctx context.Context, handle BatchHandle) (*BatchStatus, error)
}

// Config holds the settings an adapter is constructed with. Adapters copy it;
// nothing is read from the process environment at call time.
type Config struct {
	APIKey      string        `yaml:"api_key" json:"-"`
	Model       string        `yaml:"model" json:"model"`
	BaseURL     string        `yaml:"base_url" json:"base_url,omitempty"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens,omitempty"`
	Temperature *float64      `yaml:"temperature" json:"temperature,omitempty"`
	RepairJSON  bool          `yaml:"repair_json" json:"repair_json,omitempty"` // attempt jsonrepair on object-like output that fails to decode
}

// Validate checks a prompt request before any network call.
func Validate(request PromptRequest) error {
	if strings.TrimSpace(request.SystemPrompt) == "" {
		return NewValidationError("system_prompt", "must not be empty")
	}
	if strings.TrimSpace(request.UserPrompt) == "" {
		return NewValidationError("user_prompt", "must not be empty")
	}
	return request.Image.Validate()
}

/*
	##### BATCH #####
*/

// BatchState is the provider-neutral lifecycle state of a batch.
type BatchState string

const (
	BatchPending   BatchState = "pending"
	BatchCompleted BatchState = "completed"
	BatchFailed    BatchState = "failed"
	BatchCancelled BatchState = "cancelled"
	BatchExpired   BatchState = "expired"
)

// Done reports whether the vendor will make no further progress on the batch.
func (s BatchState) Done() bool {
	return s != BatchPending
}

// BatchHandle is the token returned by SubmitBatch. It is JSON-serializable so
// callers can persist it between submission and polling. Inputs maps each item
// key to its echoed messages so results can be normalized later.
type BatchHandle struct {
	ID       string               `json:"id"`
	Provider string               `json:"provider"`
	Model    string               `json:"model"`
	Keys     []string             `json:"keys"` // submission order
	Inputs   map[string][]Message `json:"inputs"`
	Created  time.Time            `json:"created"`
}

// BatchFailure describes one batch item the vendor could not process.
type BatchFailure struct {
	Key        string `json:"key"`
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message"`
}

// BatchStatus is the result of polling a batch.
type BatchStatus struct {
	ID          string             `json:"id"`
	State       BatchState         `json:"state"`
	VendorState string             `json:"vendor_state"`
	Results     []NormalizedResult `json:"results,omitempty"`
	Failures    []BatchFailure     `json:"failures,omitempty"`
}
