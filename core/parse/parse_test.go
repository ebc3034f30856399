package parse

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestOutput(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		repair bool
		want   any
	}{
		{
			name:  "json object",
			input: `{"description": ["hi"]}`,
			want:  map[string]any{"description": []any{"hi"}},
		},
		{
			name:  "json array",
			input: `[{"position": "top", "text": "EXIT"}]`,
			want:  []any{map[string]any{"position": "top", "text": "EXIT"}},
		},
		{
			name:  "fenced json stays text",
			input: "```json\n{\"description\": [\"hi\"]}\n```",
			want:  "```json\n{\"description\": [\"hi\"]}\n```",
		},
		{
			name:  "fence without language tag stays text",
			input: "```\n{\"ok\": true}\n```",
			want:  "```\n{\"ok\": true}\n```",
		},
		{
			name:  "surrounding whitespace",
			input: "  \n{\"a\": \"b\"}\n ",
			want:  map[string]any{"a": "b"},
		},
		{
			name:  "numbers keep their text",
			input: `{"n": 12345678901234567890}`,
			want:  map[string]any{"n": json.Number("12345678901234567890")},
		},
		{
			name:  "plain text",
			input: "plain answer",
			want:  "plain answer",
		},
		{
			name:  "empty text",
			input: "",
			want:  "",
		},
		{
			name:  "json scalar stays text",
			input: "42",
			want:  "42",
		},
		{
			name:  "json string stays text",
			input: `"quoted"`,
			want:  `"quoted"`,
		},
		{
			name:  "malformed object without repair",
			input: `{"a": 1`,
			want:  `{"a": 1`,
		},
		{
			name:   "malformed object with repair",
			input:  `{name: 'John', age: 30}`,
			repair: true,
			want:   map[string]any{"name": "John", "age": json.Number("30")},
		},
		{
			name:   "fenced json stays text with repair",
			input:  "```json\n{\"ok\": true}\n```",
			repair: true,
			want:   "```json\n{\"ok\": true}\n```",
		},
		{
			name:   "plain text with repair",
			input:  "plain answer",
			repair: true,
			want:   "plain answer",
		},
		{
			name:  "trailing data",
			input: `{"a": 1} {"b": 2}`,
			want:  `{"a": 1} {"b": 2}`,
		},
		{
			name:  "extra closing brace",
			input: `{"a": 1}}`,
			want:  `{"a": 1}}`,
		},
		{
			name:  "fenced text is returned with the fence",
			input: "```\nnot json\n```",
			want:  "```\nnot json\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Output(tt.input, tt.repair)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Output(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOutput_Idempotent(t *testing.T) {
	inputs := []string{"plain answer", `{"a": [1, 2]}`, "", "{broken", "```json\n{\"a\": 1}\n```"}
	for _, input := range inputs {
		first := Output(input, false)
		text, isText := first.(string)
		if !isText {
			continue
		}
		if text != input {
			t.Errorf("fallback changed text: %q -> %q", input, text)
		}
		if again := Output(text, false); !reflect.DeepEqual(again, first) {
			t.Errorf("second pass differs for %q: %#v", input, again)
		}
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"```json\n{}\n```", "{}"},
		{"```\n[1]\n```", "[1]"},
		{"```{\"a\":1}```", `{"a":1}`},
		{"no fence", "no fence"},
		{"  padded  ", "padded"},
		{"```", "```"},
	}

	for _, tt := range tests {
		if got := StripCodeFence(tt.input); got != tt.want {
			t.Errorf("StripCodeFence(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAs(t *testing.T) {
	type scene struct {
		Description []string `json:"description"`
	}

	got, err := As[scene]("```json\n{\"description\": [\"hi\"]}\n```")
	if err != nil {
		t.Fatalf("As() error = %v", err)
	}
	if !reflect.DeepEqual(got.Description, []string{"hi"}) {
		t.Errorf("unexpected description: %v", got.Description)
	}

	repaired, err := As[scene](`{description: ['a', 'b']}`)
	if err != nil {
		t.Fatalf("As() on repairable input error = %v", err)
	}
	if len(repaired.Description) != 2 {
		t.Errorf("expected 2 entries, got %v", repaired.Description)
	}

	if _, err := As[int]("not a number at all"); err == nil {
		t.Error("expected error decoding text as int")
	}
}
