// Package ai defines the shared, provider-agnostic types used by every LLM
// adapter (OpenAI, Gemini). Each provider's conversion layer maps these types
// to its own wire format, keeping callers decoupled from vendor details.
//
// The central interface is [ChatAdapter]: one [PromptRequest] in, one
// [NormalizedResult] out. Adapters whose vendor offers asynchronous batch
// processing also implement [BatchAdapter].
//
// Failures are reported with three error kinds, matchable with errors.Is
// against [ErrValidation], [ErrAuthentication] and [ErrProvider]. Output that
// is not valid JSON is never an error: it is returned as raw text.
package ai
