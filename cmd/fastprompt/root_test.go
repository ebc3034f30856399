package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leofalp/fastprompt/providers/ai"
)

// isolateEnv points the OpenAI adapter at url and clears variables that would
// change provider selection.
func isolateEnv(t *testing.T, url string) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_API_BASE_URL", url)
	t.Setenv("FASTPROMPT_PROVIDER", "")
	t.Setenv("FASTPROMPT_MODEL", "")
	t.Setenv("FASTPROMPT_TIMEOUT", "")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestChatCommand(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
		fmt.Fprint(w, `{"id":"chatcmpl-1","model":"gpt-4.1-mini","choices":[{"message":{"role":"assistant","content":"{\"echo\": \"hello\"}"}}],"usage":{"prompt_tokens":12,"completion_tokens":5}}`)
	}))
	defer server.Close()
	isolateEnv(t, server.URL)

	stdout, stderr, err := execute(t, "chat", "--model", "gpt-4.1-mini", "--log-level", "info", "--payload-log", "standard",
		"--system", "Echo the input.", "--user", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, stderr)
	}
	if received["model"] != "gpt-4.1-mini" {
		t.Errorf("expected model flag to reach the vendor, got %v", received["model"])
	}

	var result ai.NormalizedResult
	if err = json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("stdout is not a result: %v\n%s", err, stdout)
	}
	if result.RequestID != "chatcmpl-1" || result.TotalTokens != 17 {
		t.Errorf("unexpected result %+v", result)
	}
	if object, ok := result.Output.(map[string]any); !ok || object["echo"] != "hello" {
		t.Errorf("unexpected output %#v", result.Output)
	}
	for _, want := range []string{"llm request completed", "structured_output"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("expected %q in logs:\n%s", want, stderr)
		}
	}
}

func TestChatCommand_ProviderFlagReceivesEnvModel(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		fmt.Fprint(w, `{"responseId":"resp-1","candidates":[{"content":{"parts":[{"text":"ok"}]}}],"usageMetadata":{"promptTokenCount":3,"candidatesTokenCount":1}}`)
	}))
	defer server.Close()
	isolateEnv(t, server.URL)
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("GEMINI_API_BASE_URL", server.URL)
	t.Setenv("FASTPROMPT_MODEL", "gemini-2.5-flash")

	stdout, stderr, err := execute(t, "chat", "--provider", "gemini", "--log-level", "error", "--system", "s", "--user", "u")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, stderr)
	}
	if path != "/models/gemini-2.5-flash:generateContent" {
		t.Errorf("expected the env model to reach gemini, got path %q", path)
	}

	var result ai.NormalizedResult
	if err = json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("stdout is not a result: %v\n%s", err, stdout)
	}
	if result.Model != "gemini-2.5-flash" || result.TotalTokens != 4 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestChatCommand_Errors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer server.Close()
	isolateEnv(t, server.URL)

	tests := []struct {
		name string
		args []string
	}{
		{"missing user prompt", []string{"chat", "--system", "s"}},
		{"unknown provider", []string{"chat", "--provider", "anthropic", "--system", "s", "--user", "u"}},
		{"bad payload log", []string{"chat", "--payload-log", "loud", "--system", "s", "--user", "u"}},
		{"prompt and file", []string{"chat", "--system", "s", "--system-file", "s.txt", "--user", "u"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
	if calls != 0 {
		t.Errorf("expected no vendor call, got %d", calls)
	}
}

func TestBatchCommands(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /files", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"file-abc","object":"file","purpose":"batch"}`)
	})
	mux.HandleFunc("POST /batches", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"batch_123","object":"batch","status":"validating"}`)
	})
	mux.HandleFunc("GET /batches/batch_123", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"batch_123","object":"batch","status":"in_progress"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	isolateEnv(t, server.URL)

	dir := t.TempDir()
	promptsPath := filepath.Join(dir, "prompts.jsonl")
	handlePath := filepath.Join(dir, "handle.json")
	prompts := `{"system_prompt":"Echo the input.","user_prompt":"one"}
{"system_prompt":"Echo the input.","user_prompt":"two"}
`
	if err := os.WriteFile(promptsPath, []byte(prompts), 0o600); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, err := execute(t, "batch", "submit", "--file", promptsPath, "--handle", handlePath)
	if err != nil {
		t.Fatalf("submit: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "batch_123") {
		t.Errorf("unexpected submit output %q", stdout)
	}

	var handle ai.BatchHandle
	if err = readJSONFile(handlePath, &handle); err != nil {
		t.Fatal(err)
	}
	if handle.ID != "batch_123" || handle.Provider != "openai" || len(handle.Keys) != 2 {
		t.Errorf("unexpected handle %+v", handle)
	}

	// The provider recorded in the handle wins over the environment.
	t.Setenv("FASTPROMPT_PROVIDER", "gemini")
	stdout, stderr, err = execute(t, "batch", "poll", "--handle", handlePath)
	if err != nil {
		t.Fatalf("poll: %v\n%s", err, stderr)
	}
	var status ai.BatchStatus
	if err = json.Unmarshal([]byte(stdout), &status); err != nil {
		t.Fatalf("stdout is not a status: %v\n%s", err, stdout)
	}
	if status.State != ai.BatchPending || status.VendorState != "in_progress" {
		t.Errorf("unexpected status %+v", status)
	}
}
