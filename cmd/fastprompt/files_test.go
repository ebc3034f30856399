package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leofalp/fastprompt/providers/ai"
)

func TestLoadPrompt(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "system.txt")
	htmlPath := filepath.Join(dir, "system.html")
	if err := os.WriteFile(textPath, []byte("Echo the input."), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(htmlPath, []byte("<h1>Rules</h1><p>Answer in <strong>JSON</strong>.</p>"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got, err := loadPrompt("system", "inline", ""); err != nil || got != "inline" {
		t.Errorf("inline: got %q, %v", got, err)
	}
	if got, err := loadPrompt("system", "", textPath); err != nil || got != "Echo the input." {
		t.Errorf("text file: got %q, %v", got, err)
	}

	got, err := loadPrompt("system", "", htmlPath)
	if err != nil {
		t.Fatalf("html file: %v", err)
	}
	if !strings.Contains(got, "# Rules") || !strings.Contains(got, "**JSON**") || strings.Contains(got, "<p>") {
		t.Errorf("expected markdown, got %q", got)
	}

	if _, err = loadPrompt("user", "", filepath.Join(dir, "missing.txt")); err == nil || !strings.Contains(err.Error(), "user prompt") {
		t.Errorf("expected read error naming the prompt, got %v", err)
	}
}

func TestDecodeBatch(t *testing.T) {
	input := `{"system_prompt": "Echo the input.", "user_prompt": "one"}

{"system_prompt": "Read the text.", "user_prompt": "two", "image": "https://example.com/a.png"}
{"system_prompt": "s", "user_prompt": "three", "image": {"path": "scene.png"}}
`
	requests, err := decodeBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(requests))
	}
	if requests[0].UserPrompt != "one" || requests[0].Image != nil {
		t.Errorf("unexpected first request %+v", requests[0])
	}
	if requests[1].Image == nil || requests[1].Image.URL != "https://example.com/a.png" {
		t.Errorf("expected image url, got %+v", requests[1].Image)
	}
	if requests[2].Image == nil || requests[2].Image.Path != "scene.png" {
		t.Errorf("expected image path, got %+v", requests[2].Image)
	}

	_, err = decodeBatch(strings.NewReader("{\"system_prompt\":\"s\",\"user_prompt\":\"u\"}\nnot json\n"))
	if err == nil || !strings.HasPrefix(err.Error(), "line 2:") {
		t.Errorf("expected error on line 2, got %v", err)
	}
}

func TestJSONFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handle.json")
	handle := ai.BatchHandle{
		ID:       "batch_1",
		Provider: "openai",
		Keys:     []string{"k1"},
		Inputs:   map[string][]ai.Message{"k1": ai.InputMessages(ai.PromptRequest{SystemPrompt: "s", UserPrompt: "u"})},
	}
	if err := writeJSONFile(path, handle); err != nil {
		t.Fatal(err)
	}

	var got ai.BatchHandle
	if err := readJSONFile(path, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "batch_1" || got.Inputs["k1"][1].Content != "u" {
		t.Errorf("unexpected handle %+v", got)
	}
}
