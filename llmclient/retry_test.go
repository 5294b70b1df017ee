package llmclient

import (
	"context"
	"testing"
	"time"
)

func fastPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:        maxRetries,
		BaseDelay:         0.001,
		MaxDelay:          0.01,
		BackoffMultiplier: 2.0,
	}
}

func TestRetrySucceedsAfterRetryableFailures(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &ServerError{ProviderError{SDKError: SDKError{Message: "overloaded"}, Retryable: true}}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if result != "ok" || calls != 3 {
		t.Errorf("result = %q calls = %d, want ok/3", result, calls)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		return "", &AuthenticationError{ProviderError{SDKError: SDKError{Message: "bad key"}}}
	})
	if err == nil {
		t.Fatal("Retry() must return the error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries)", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(2), func(ctx context.Context) (string, error) {
		calls++
		return "", &ServerError{ProviderError{SDKError: SDKError{Message: "down"}, Retryable: true}}
	})
	if err == nil {
		t.Fatal("Retry() must return the last error")
	}
	if calls != 3 { // initial + 2 retries
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryHonorsRetryAfterCeiling(t *testing.T) {
	retryAfter := 120.0 // above MaxDelay; must give up immediately
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		return "", &RateLimitError{ProviderError{
			SDKError:   SDKError{Message: "slow down"},
			Retryable:  true,
			RetryAfter: &retryAfter,
		}}
	})
	if err == nil {
		t.Fatal("Retry() must return the rate limit error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryAbortsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxRetries: 3, BaseDelay: 5.0, MaxDelay: 10.0, BackoffMultiplier: 2.0}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Retry(ctx, policy, func(ctx context.Context) (string, error) {
		return "", &ServerError{ProviderError{SDKError: SDKError{Message: "down"}, Retryable: true}}
	})
	if _, ok := err.(*AbortError); !ok {
		t.Fatalf("error = %T, want *AbortError", err)
	}
}

func TestRetryOnRetryCallback(t *testing.T) {
	var attempts []int
	policy := fastPolicy(2)
	policy.OnRetry = func(err error, attempt int, delay time.Duration) {
		attempts = append(attempts, attempt)
	}

	_, _ = Retry(context.Background(), policy, func(ctx context.Context) (string, error) {
		return "", &ServerError{ProviderError{SDKError: SDKError{Message: "down"}, Retryable: true}}
	})
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("attempts = %v, want [1 2]", attempts)
	}
}

func TestDelayIsCappedAtMaxDelay(t *testing.T) {
	policy := RetryPolicy{BaseDelay: 1.0, MaxDelay: 2.0, BackoffMultiplier: 10.0}
	if d := policy.Delay(5); d > 2*time.Second {
		t.Errorf("Delay(5) = %v, want <= 2s", d)
	}
}

func TestRetryMiddlewareRetries(t *testing.T) {
	mock := &mockAdapter{name: "mock", err: &ServerError{ProviderError{SDKError: SDKError{Message: "down"}, Retryable: true}}}
	client := NewClient(
		WithProvider("mock", mock),
		WithMiddleware(RetryMiddleware(fastPolicy(2))),
	)

	_, err := client.Complete(context.Background(), Request{Model: "m", Messages: []Message{UserMessage("hi")}})
	if err == nil {
		t.Fatal("Complete() must fail when all attempts fail")
	}
	if mock.calls != 3 {
		t.Errorf("calls = %d, want 3", mock.calls)
	}
}
