// Package gemini adapts Google's Gemini generative language API to the
// fastprompt adapter contract.
//
// [New] takes an [ai.Config]; the key is sent in the x-goog-api-key header.
// Requests carry the system prompt as systemInstruction, a generation config
// (maxOutputTokens, temperature, topP 0.95) and four BLOCK_MEDIUM_AND_ABOVE
// safety settings. Local and inline images are sent as inlineData, remote ones
// as fileData.
//
// Batches are submitted with inlined requests through batchGenerateContent and
// polled through the batches/{id} resource.
package gemini
