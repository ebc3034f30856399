//go:build integration

package gemini

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/leofalp/fastprompt/providers/ai"
)

// requireAPIKey fails the test immediately when GEMINI_API_KEY is not set.
// Integration tests are opt-in (build tag), so a missing key is a
// configuration error.
func requireAPIKey(t *testing.T) string {
	t.Helper()
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		t.Fatal("GEMINI_API_KEY is required for integration tests")
	}
	return key
}

func testModel() string {
	if model := os.Getenv("GEMINI_TEST_MODEL"); model != "" {
		return model
	}
	return "gemini-2.5-flash-lite"
}

func TestGeminiRequest_Integration(t *testing.T) {
	adapter := New(ai.Config{APIKey: requireAPIKey(t), Model: testModel()})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := adapter.Request(ctx, ai.PromptRequest{
		SystemPrompt: `Answer only with a JSON object of the form {"answer": <number>}.`,
		UserPrompt:   "What is 2+2?",
	})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if result.Model == "" || result.RequestID == "" {
		t.Errorf("missing metadata: %+v", result)
	}
	if result.PromptTokens == 0 {
		t.Errorf("expected prompt tokens to be reported, got %+v", result)
	}
	t.Logf("output: %#v", result.Output)
}
