package client

import (
	"context"
	"fmt"

	"github.com/leofalp/fastprompt/core/parse"
	"github.com/leofalp/fastprompt/providers/ai"
)

// StructuredResult pairs the decoded output with the normalized record it came from.
type StructuredResult[T any] struct {
	Data   T
	Result *ai.NormalizedResult
}

// RequestAs sends request and decodes the output into T. Unlike the lenient
// output parsing of the normalized record, a decode failure here is an error;
// malformed JSON is passed through jsonrepair once before giving up.
//
// Example:
//
//	type Scene struct {
//	    Texts []string `json:"scene_texts"`
//	}
//
//	resp, err := client.RequestAs[Scene](ctx, c, request)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(resp.Data.Texts, resp.Result.TotalTokens)
func RequestAs[T any](ctx context.Context, c *Client, request ai.PromptRequest) (*StructuredResult[T], error) {
	result, err := c.Request(ctx, request)
	if err != nil {
		return nil, err
	}

	data, err := parse.As[T](result.OutputText())
	if err != nil {
		return nil, fmt.Errorf("failed to parse structured output: %w", err)
	}

	return &StructuredResult[T]{Data: data, Result: result}, nil
}
