// Package openai adapts the OpenAI chat completions API to the fastprompt
// adapter contract.
//
// The main entry point is [New], which takes an [ai.Config]. The adapter never
// reads the environment on its own: a missing API key surfaces as an
// [ai.AuthenticationError] from the first call. Vision requests go to the same
// /chat/completions endpoint with an image_url part; local files and inline
// data are sent as base64 data URLs.
//
// [Adapter.SubmitBatch] and [Adapter.PollBatch] use the Files and Batch APIs:
// the prompts are uploaded as one JSONL file and processed within a 24h window.
package openai
