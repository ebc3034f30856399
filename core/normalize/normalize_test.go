package normalize

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/leofalp/fastprompt/providers/ai"
)

func echoInput() []ai.Message {
	return ai.InputMessages(ai.PromptRequest{SystemPrompt: "Echo the input.", UserPrompt: "hello"})
}

func TestResult_JSONOutput(t *testing.T) {
	raw := ai.RawCompletion{
		ID:    "chatcmpl-123",
		Model: "gpt-4o-mini-2024-07-18",
		Text:  `{"description": ["hi"]}`,
		Usage: &ai.Usage{PromptTokens: 12, CompletionTokens: 5, TotalTokens: 17},
	}

	got := Result(raw, echoInput(), Options{FallbackModel: "gpt-4o-mini"})

	if got.RequestID != "chatcmpl-123" {
		t.Errorf("expected request id chatcmpl-123, got %q", got.RequestID)
	}
	if got.Model != "gpt-4o-mini-2024-07-18" {
		t.Errorf("expected vendor model, got %q", got.Model)
	}
	want := map[string]any{"description": []any{"hi"}}
	if !reflect.DeepEqual(got.Output, want) {
		t.Errorf("unexpected output: %#v", got.Output)
	}
	if got.PromptTokens != 12 || got.CompletionTokens != 5 || got.TotalTokens != 17 {
		t.Errorf("unexpected usage: %d/%d/%d", got.PromptTokens, got.CompletionTokens, got.TotalTokens)
	}

	if len(got.Input) != 2 {
		t.Fatalf("expected 2 input messages, got %d", len(got.Input))
	}
	if got.Input[0].Role != ai.RoleSystem || got.Input[0].Content != "Echo the input." {
		t.Errorf("unexpected system entry: %+v", got.Input[0])
	}
	if got.Input[1].Role != ai.RoleUser || got.Input[1].Content != "hello" {
		t.Errorf("unexpected user entry: %+v", got.Input[1])
	}
}

func TestResult_PlainTextOutput(t *testing.T) {
	got := Result(ai.RawCompletion{ID: "x", Text: "plain answer"}, echoInput(), Options{})

	text, ok := got.Output.(string)
	if !ok {
		t.Fatalf("expected string output, got %T", got.Output)
	}
	if text != "plain answer" {
		t.Errorf("expected unchanged text, got %q", text)
	}
}

func TestResult_MissingUsage(t *testing.T) {
	got := Result(ai.RawCompletion{ID: "x", Text: "ok"}, echoInput(), Options{})

	if got.PromptTokens != 0 || got.CompletionTokens != 0 || got.TotalTokens != 0 {
		t.Errorf("expected zero usage, got %d/%d/%d", got.PromptTokens, got.CompletionTokens, got.TotalTokens)
	}
}

func TestResult_TotalIsRecomputed(t *testing.T) {
	usages := []ai.Usage{
		{PromptTokens: 10, CompletionTokens: 8, TotalTokens: 18},
		{PromptTokens: 10, CompletionTokens: 8, TotalTokens: 99},
		{PromptTokens: 7, CompletionTokens: 0},
		{PromptTokens: -1, CompletionTokens: 3},
	}

	for _, usage := range usages {
		got := Result(ai.RawCompletion{ID: "x", Usage: &usage}, echoInput(), Options{})
		if got.TotalTokens != got.PromptTokens+got.CompletionTokens {
			t.Errorf("total %d != %d + %d", got.TotalTokens, got.PromptTokens, got.CompletionTokens)
		}
	}
}

func TestResult_FallbacksForMissingIDAndModel(t *testing.T) {
	got := Result(ai.RawCompletion{Text: "ok"}, echoInput(), Options{FallbackModel: "gemini-1.5-pro"})

	if _, err := uuid.Parse(got.RequestID); err != nil {
		t.Errorf("expected generated uuid request id, got %q", got.RequestID)
	}
	if got.Model != "gemini-1.5-pro" {
		t.Errorf("expected fallback model, got %q", got.Model)
	}
}

func TestResult_DoesNotAliasInput(t *testing.T) {
	input := echoInput()
	got := Result(ai.RawCompletion{ID: "x"}, input, Options{})

	input[0].Content = "changed"
	if got.Input[0].Content != "Echo the input." {
		t.Errorf("result input aliases caller slice: %q", got.Input[0].Content)
	}
}

func TestResult_JSONFieldNames(t *testing.T) {
	got := Result(ai.RawCompletion{ID: "req-1", Model: "m", Text: `{"a": 1}`, Usage: &ai.Usage{PromptTokens: 1, CompletionTokens: 2}}, echoInput(), Options{})

	encoded, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, name := range []string{"request_id", "llm_model", "input", "output", "prompt_tokens", "completion_tokens", "total_tokens"} {
		if _, ok := fields[name]; !ok {
			t.Errorf("missing field %q in %s", name, encoded)
		}
	}
	if len(fields) != 7 {
		t.Errorf("expected exactly 7 fields, got %d: %s", len(fields), encoded)
	}
	if string(fields["input"]) != `[{"role":"system","content":"Echo the input."},{"role":"user","content":"hello"}]` {
		t.Errorf("unexpected input encoding: %s", fields["input"])
	}
}
