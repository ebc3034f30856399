package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Output decodes model output text into a structured value when it holds a
// JSON object or array. Any other text, including scalars, malformed JSON and
// JSON inside a markdown code fence, is returned unchanged as a string. Output
// never fails.
//
// When repair is true, object- or array-looking text that fails to decode is
// passed through jsonrepair before giving up.
//
// Example:
//
//	parse.Output(`{"description": ["hi"]}`, false) // map[string]any{"description": []any{"hi"}}
//	parse.Output("plain answer", false)            // "plain answer"
//
// Use As to decode fenced output into a known type.
func Output(text string, repair bool) any {
	candidate := strings.TrimSpace(text)
	if !looksStructured(candidate) {
		return text
	}

	if value, ok := decodeStructured(candidate); ok {
		return value
	}

	if !repair {
		return text
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return text
	}
	if value, ok := decodeStructured(repaired); ok {
		return value
	}
	return text
}

// As decodes model output text into T, repairing malformed JSON with
// jsonrepair when the first attempt fails.
//
// Example:
//
//	type Scene struct {
//	    Description []string `json:"description"`
//	}
//	scene, err := parse.As[Scene]("```json\n{\"description\": [\"hi\"]}\n```")
func As[T any](text string) (T, error) {
	var result T
	candidate := StripCodeFence(text)

	err := json.Unmarshal([]byte(candidate), &result)
	if err == nil {
		return result, nil
	}

	repairedJSON, repairErr := jsonrepair.JSONRepair(candidate)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
	}

	if err = json.Unmarshal([]byte(repairedJSON), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (repaired: %s)", result, err, repairedJSON)
	}
	return result, nil
}

// StripCodeFence removes a surrounding markdown code fence (``` or ```json)
// and outer whitespace. Text without a fence is only trimmed.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return trimmed
	}

	inner := strings.TrimSuffix(trimmed[3:], "```")
	// drop the language tag on the opening line
	if newline := strings.IndexByte(inner, '\n'); newline >= 0 {
		tag := strings.TrimSpace(inner[:newline])
		if !strings.ContainsAny(tag, "{[") {
			inner = inner[newline+1:]
		}
	}
	return strings.TrimSpace(inner)
}

func looksStructured(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

// decodeStructured decodes s as a single JSON object or array. Trailing data
// after the value counts as a failure.
func decodeStructured(s string) (any, bool) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(s)))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, false
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, false
	}
	switch value.(type) {
	case map[string]any, []any:
		return value, true
	}
	return nil, false
}
