package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across adapters, the client and the logging middleware.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider (e.g., "openai", "gemini")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier (e.g., "gpt-4o-mini")
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMRequestID is the request identifier reported in the normalized result
	AttrLLMRequestID = "llm.request.id"

	// AttrLLMVision is true when the request carries an image
	AttrLLMVision = "llm.vision"
)

// --- Token Usage Attributes ---

const (
	// AttrLLMTokensPrompt is the number of prompt tokens
	AttrLLMTokensPrompt = "llm.tokens.prompt" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensCompletion is the number of completion tokens
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensTotal is the total number of tokens
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Batch Attributes ---

const (
	// AttrBatchID is the vendor batch identifier
	AttrBatchID = "batch.id"

	// AttrBatchSize is the number of requests in a batch
	AttrBatchSize = "batch.size"

	// AttrBatchState is the normalized batch state
	AttrBatchState = "batch.state"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrErrorType is the error kind: validation, authentication, provider, timeout, canceled or unknown
	AttrErrorType = "error.type"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanClientRequest is the span name for a single normalized chat call
	SpanClientRequest = "client.request"

	// SpanClientBatchSubmit is the span name for batch submission
	SpanClientBatchSubmit = "client.batch.submit"

	// SpanClientBatchPoll is the span name for batch polling
	SpanClientBatchPoll = "client.batch.poll"
)

// --- Event Names ---

const (
	// EventLLMRequestStart marks the start of a vendor request
	EventLLMRequestStart = "llm.request.start"

	// EventLLMRequestEnd marks the end of a vendor request
	EventLLMRequestEnd = "llm.request.end"

	// EventTokensReceived marks when usage counters are known
	EventTokensReceived = "llm.tokens.received" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Metric Names ---

const (
	// MetricClientRequestCount counts client requests by outcome
	MetricClientRequestCount = "client.request.count"

	// MetricClientRequestDuration records client request latency in seconds
	MetricClientRequestDuration = "client.request.duration"

	// MetricClientTokensTotal accumulates total tokens
	MetricClientTokensTotal = "client.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// MetricClientTokensPrompt accumulates prompt tokens
	MetricClientTokensPrompt = "client.tokens.prompt" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// MetricClientTokensCompletion accumulates completion tokens
	MetricClientTokensCompletion = "client.tokens.completion" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// MetricClientBatchCount counts batch submissions and polls by outcome
	MetricClientBatchCount = "client.batch.count"
)
