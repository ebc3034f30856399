package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leofalp/fastprompt/providers/ai"
)

// makeSendFunc returns a SendFunc that sleeps for the given duration before
// returning, simulating a slow adapter.
func makeSendFunc(sleep time.Duration) func(context.Context, ai.PromptRequest) (*ai.NormalizedResult, error) {
	return func(ctx context.Context, _ ai.PromptRequest) (*ai.NormalizedResult, error) {
		select {
		case <-time.After(sleep):
			return &ai.NormalizedResult{RequestID: "ok"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func TestTimeoutMiddleware_CompletesBeforeTimeout(t *testing.T) {
	chain := NewTimeoutMiddleware(100 * time.Millisecond)(makeSendFunc(0))

	result, err := chain(context.Background(), ai.PromptRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RequestID != "ok" {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestTimeoutMiddleware_Exceeded(t *testing.T) {
	chain := NewTimeoutMiddleware(20 * time.Millisecond)(makeSendFunc(time.Second))

	start := time.Now()
	_, err := chain(context.Background(), ai.PromptRequest{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("timeout did not cut the call short")
	}
}

func TestTimeoutMiddleware_SetsDeadline(t *testing.T) {
	chain := NewTimeoutMiddleware(time.Minute)(func(ctx context.Context, _ ai.PromptRequest) (*ai.NormalizedResult, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			t.Fatal("expected a deadline on the context")
		}
		if time.Until(deadline) > time.Minute {
			t.Errorf("deadline too far: %v", deadline)
		}
		return &ai.NormalizedResult{}, nil
	})

	if _, err := chain(context.Background(), ai.PromptRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTimeoutMiddleware_ShorterParentDeadlineWins(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	chain := NewTimeoutMiddleware(time.Minute)(makeSendFunc(time.Second))
	if _, err := chain(parent, ai.PromptRequest{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected parent deadline to apply, got %v", err)
	}
}
