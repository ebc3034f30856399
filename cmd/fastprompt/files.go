package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/fastprompt/providers/ai"
)

// maxBatchLine bounds one JSONL line; inline base64 images can be large.
const maxBatchLine = 32 << 20

// loadPrompt returns the inline value, or the content of path when set. HTML
// files are converted to markdown so the model sees the text, not the markup.
func loadPrompt(name, value, path string) (string, error) {
	if path == "" {
		return value, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt: %w", name, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		markdown, err := htmltomarkdown.ConvertString(string(data))
		if err != nil {
			return "", fmt.Errorf("failed to convert %s prompt to markdown: %w", name, err)
		}
		return strings.TrimSpace(markdown), nil
	default:
		return string(data), nil
	}
}

// readBatchFile reads one PromptRequest per non-blank line.
func readBatchFile(path string) ([]ai.PromptRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	return decodeBatch(f)
}

func decodeBatch(r io.Reader) ([]ai.PromptRequest, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBatchLine)

	var requests []ai.PromptRequest
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var request ai.PromptRequest
		if err := json.Unmarshal([]byte(text), &request); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		requests = append(requests, request)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return requests, nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err = os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err = json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
