package ai

import (
	"encoding/json"
)

/*
	##### ADAPTER INPUT #####
*/

// PromptRequest is a single system/user prompt pair, optionally accompanied by
// an image for vision-capable models. It is built by the caller and treated as
// immutable by every adapter.
type PromptRequest struct {
	SystemPrompt string    `json:"system_prompt"`
	UserPrompt   string    `json:"user_prompt"`
	Image        *ImageRef `json:"image,omitempty"`
}

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem MessageRole = "system" // System instructions
	RoleUser   MessageRole = "user"   // End-user message
)

// ContentPartType discriminates the entries of a multimodal user turn.
type ContentPartType string

const (
	ContentPartText  ContentPartType = "text"
	ContentPartImage ContentPartType = "image"
)

// ContentPart is one entry of a multimodal message. Image parts carry the
// caller's reference (path, URL or a base64 marker), never the encoded bytes.
type ContentPart struct {
	Type  ContentPartType `json:"type"`
	Text  string          `json:"text,omitempty"`
	Image string          `json:"image,omitempty"`
}

// Message is an input entry echoed back in the normalized result.
// When Parts is set the message marshals its content as a list of parts,
// otherwise as a plain string.
type Message struct {
	Role    MessageRole
	Content string
	Parts   []ContentPart
}

type messageJSON struct {
	Role    MessageRole     `json:"role"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON encodes the message as {"role", "content"}.
func (m Message) MarshalJSON() ([]byte, error) {
	var (
		content []byte
		err     error
	)
	if len(m.Parts) > 0 {
		content, err = json.Marshal(m.Parts)
	} else {
		content, err = json.Marshal(m.Content)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(messageJSON{Role: m.Role, Content: content})
}

// UnmarshalJSON accepts both the string and the parts form of content.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw messageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Message{Role: raw.Role}
	if len(raw.Content) == 0 || string(raw.Content) == "null" {
		return nil
	}
	if raw.Content[0] == '[' {
		if err := json.Unmarshal(raw.Content, &m.Parts); err != nil {
			return err
		}
		for _, p := range m.Parts {
			if p.Type == ContentPartText {
				m.Content = p.Text
				break
			}
		}
		return nil
	}
	return json.Unmarshal(raw.Content, &m.Content)
}

// InputMessages returns the echo of a prompt request: exactly one system entry
// followed by one user entry. Vision requests add an image part to the user turn.
func InputMessages(request PromptRequest) []Message {
	user := Message{Role: RoleUser, Content: request.UserPrompt}
	if request.Image != nil {
		user.Parts = []ContentPart{
			{Type: ContentPartText, Text: request.UserPrompt},
			{Type: ContentPartImage, Image: request.Image.String()},
		}
	}
	return []Message{
		{Role: RoleSystem, Content: request.SystemPrompt},
		user,
	}
}

/*
	##### ADAPTER OUTPUT #####
*/

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// RawCompletion is the provider-neutral view of a vendor response that the
// adapters hand to the normalizer. It never leaves the library.
type RawCompletion struct {
	ID    string
	Model string
	Text  string
	Usage *Usage // nil when the vendor reported no usage
}

// NormalizedResult is the uniform record returned for every successful call.
// Field names are part of the public contract.
type NormalizedResult struct {
	RequestID        string    `json:"request_id"`
	Model            string    `json:"llm_model"`
	Input            []Message `json:"input"`
	Output           any       `json:"output"` // decoded JSON, or the raw text when it does not parse
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
}

// OutputText returns the output as text: the raw string when parsing fell back,
// the compact JSON encoding otherwise.
func (r NormalizedResult) OutputText() string {
	if s, ok := r.Output.(string); ok {
		return s
	}
	encoded, err := json.Marshal(r.Output)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// OutputObject returns the output as a JSON object, if it is one.
func (r NormalizedResult) OutputObject() (map[string]any, bool) {
	obj, ok := r.Output.(map[string]any)
	return obj, ok
}
