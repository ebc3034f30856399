package observability

import (
	"context"
	"time"
)

// Provider is what the client needs to observe prompt calls and batch
// operations: one span per call, token and latency metrics, and structured
// log events. A nil Provider turns observation off; the client and the
// adapters check for nil before every use.
type Provider interface {
	Tracer
	Metrics
	Logger
}

// Tracer opens spans. The client opens one per prompt call
// ([SpanClientRequest]) and one per batch submit or poll.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span covers one prompt call or batch operation. Adapters add vendor details
// (endpoint, request id, HTTP status) to the span they find in the context.
type Span interface {
	End()
	SetAttributes(attrs ...Attribute)
	SetStatus(code StatusCode, description string)
	RecordError(err error)
	AddEvent(name string, attrs ...Attribute)
}

// StatusCode is the outcome recorded on a span.
type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusOK
	StatusError
)

// Metrics hands out named instruments; see the Metric* constants for the
// names the client records.
type Metrics interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// Counter accumulates request counts and token usage.
type Counter interface {
	Add(ctx context.Context, value int64, attrs ...Attribute)
}

// Histogram records call latencies in seconds.
type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...Attribute)
}

// Logger emits structured events. Trace carries vendor payload details and is
// below slog's Debug level.
type Logger interface {
	Trace(ctx context.Context, msg string, attrs ...Attribute)
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)
}

// Attribute is a key-value pair attached to spans, metrics and log events.
// Keys should come from the Attr* constants.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value}
}

// Error stores the error message under [AttrError]; a nil error yields "".
func Error(err error) Attribute {
	if err == nil {
		return Attribute{Key: AttrError, Value: ""}
	}
	return Attribute{Key: AttrError, Value: err.Error()}
}
