package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/fastprompt/providers/ai"
)

func TestSubmitBatch(t *testing.T) {
	var uploaded []batchInputLine
	mux := http.NewServeMux()
	mux.HandleFunc("POST /files", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.FormValue("purpose") != "batch" {
			t.Errorf("expected purpose=batch, got %q", r.FormValue("purpose"))
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		decoder := json.NewDecoder(file)
		for {
			var line batchInputLine
			if err := decoder.Decode(&line); errors.Is(err, io.EOF) {
				break
			} else if err != nil {
				t.Fatalf("decode line: %v", err)
			}
			uploaded = append(uploaded, line)
		}
		fmt.Fprint(w, `{"id":"file-abc","object":"file","purpose":"batch"}`)
	})
	mux.HandleFunc("POST /batches", func(w http.ResponseWriter, r *http.Request) {
		var body createBatchRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode batch request: %v", err)
		}
		if body.InputFileID != "file-abc" || body.Endpoint != "/v1/chat/completions" || body.CompletionWindow != "24h" {
			t.Errorf("unexpected batch request %+v", body)
		}
		fmt.Fprint(w, `{"id":"batch_123","object":"batch","status":"validating","input_file_id":"file-abc"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	adapter := New(ai.Config{APIKey: "k", BaseURL: server.URL})
	handle, err := adapter.SubmitBatch(context.Background(), []ai.PromptRequest{
		{SystemPrompt: "Echo the input.", UserPrompt: "one"},
		{SystemPrompt: "Echo the input.", UserPrompt: "two"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if handle.ID != "batch_123" || handle.Provider != "openai" || handle.Model != defaultModel {
		t.Errorf("unexpected handle %+v", handle)
	}
	if len(handle.Keys) != 2 || len(uploaded) != 2 {
		t.Fatalf("expected 2 keys and 2 uploaded lines, got %d/%d", len(handle.Keys), len(uploaded))
	}
	for i, line := range uploaded {
		if line.CustomID != handle.Keys[i] {
			t.Errorf("line %d: custom_id %q does not match key %q", i, line.CustomID, handle.Keys[i])
		}
		if line.Method != http.MethodPost || line.URL != "/v1/chat/completions" {
			t.Errorf("line %d: unexpected target %s %s", i, line.Method, line.URL)
		}
	}
	if handle.Inputs[handle.Keys[1]][1].Content != "two" {
		t.Errorf("expected input echo for the second item, got %+v", handle.Inputs[handle.Keys[1]])
	}
}

func TestSubmitBatch_RejectedBeforeNetwork(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer server.Close()

	adapter := New(ai.Config{APIKey: "k", BaseURL: server.URL})
	if _, err := adapter.SubmitBatch(context.Background(), nil); !errors.Is(err, ai.ErrValidation) {
		t.Errorf("expected validation error for empty batch, got %v", err)
	}
	_, err := adapter.SubmitBatch(context.Background(), []ai.PromptRequest{
		{SystemPrompt: "s", UserPrompt: "ok"},
		{SystemPrompt: "s", UserPrompt: ""},
	})
	if !errors.Is(err, ai.ErrValidation) || !strings.Contains(err.Error(), "request 1") {
		t.Errorf("expected validation error naming request 1, got %v", err)
	}

	noKey := New(ai.Config{BaseURL: server.URL})
	if _, err := noKey.SubmitBatch(context.Background(), []ai.PromptRequest{{SystemPrompt: "s", UserPrompt: "u"}}); !errors.Is(err, ai.ErrAuthentication) {
		t.Errorf("expected authentication error, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no vendor call, got %d", calls)
	}
}

func TestPollBatch_Pending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/batches/batch_123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"id":"batch_123","status":"in_progress","output_file_id":"file-out"}`)
	}))
	defer server.Close()

	adapter := New(ai.Config{APIKey: "k", BaseURL: server.URL})
	status, err := adapter.PollBatch(context.Background(), ai.BatchHandle{ID: "batch_123", Provider: "openai"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != ai.BatchPending || status.VendorState != "in_progress" {
		t.Errorf("unexpected status %+v", status)
	}
	if len(status.Results) != 0 || len(status.Failures) != 0 {
		t.Errorf("pending batch must carry no results, got %+v", status)
	}
}

func TestPollBatch_Completed(t *testing.T) {
	okBody := chatResponse(`{"echo": "two"}`, `{"prompt_tokens":10,"completion_tokens":3,"total_tokens":13}`)
	plainBody := chatResponse("one", `{"prompt_tokens":9,"completion_tokens":1,"total_tokens":10}`)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /batches/batch_123", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"batch_123","status":"completed","output_file_id":"file-out","error_file_id":"file-err"}`)
	})
	mux.HandleFunc("GET /files/file-out/content", func(w http.ResponseWriter, r *http.Request) {
		// Output order differs from submission order.
		fmt.Fprintf(w, "{\"id\":\"b1\",\"custom_id\":\"k2\",\"response\":{\"status_code\":200,\"request_id\":\"req-2\",\"body\":%s}}\n", okBody)
		fmt.Fprintf(w, "{\"id\":\"b2\",\"custom_id\":\"k1\",\"response\":{\"status_code\":200,\"request_id\":\"req-1\",\"body\":%s}}\n", plainBody)
	})
	mux.HandleFunc("GET /files/file-err/content", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"b3","custom_id":"k3","response":{"status_code":400,"request_id":"req-3","body":{"error":{"code":"invalid_request","message":"bad prompt"}}}}`+"\n")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	handle := ai.BatchHandle{
		ID:       "batch_123",
		Provider: "openai",
		Model:    "gpt-4o-mini",
		Keys:     []string{"k1", "k2", "k3"},
		Inputs: map[string][]ai.Message{
			"k1": ai.InputMessages(ai.PromptRequest{SystemPrompt: "Echo the input.", UserPrompt: "one"}),
			"k2": ai.InputMessages(ai.PromptRequest{SystemPrompt: "Echo the input.", UserPrompt: "two"}),
			"k3": ai.InputMessages(ai.PromptRequest{SystemPrompt: "Echo the input.", UserPrompt: "three"}),
		},
	}

	adapter := New(ai.Config{APIKey: "k", BaseURL: server.URL})
	status, err := adapter.PollBatch(context.Background(), handle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != ai.BatchCompleted {
		t.Fatalf("expected completed, got %+v", status)
	}
	if len(status.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(status.Results))
	}

	first, second := status.Results[0], status.Results[1]
	if first.Output != "one" || first.Input[1].Content != "one" || first.TotalTokens != 10 {
		t.Errorf("unexpected first result %+v", first)
	}
	if object, ok := second.OutputObject(); !ok || object["echo"] != "two" {
		t.Errorf("unexpected second output %#v", second.Output)
	}
	if second.TotalTokens != 13 {
		t.Errorf("expected 13 total tokens, got %d", second.TotalTokens)
	}

	if len(status.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %+v", status.Failures)
	}
	failure := status.Failures[0]
	if failure.Key != "k3" || failure.StatusCode != http.StatusBadRequest || !strings.Contains(failure.Message, "bad prompt") {
		t.Errorf("unexpected failure %+v", failure)
	}
}

func TestPollBatch_WrongProvider(t *testing.T) {
	adapter := New(ai.Config{APIKey: "k", BaseURL: "http://127.0.0.1:0"})
	_, err := adapter.PollBatch(context.Background(), ai.BatchHandle{ID: "batches/1", Provider: "gemini"})
	if !errors.Is(err, ai.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
