package llmclient

import (
	"errors"
	"testing"
)

func TestErrorFromStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		wantType  string
		retryable bool
	}{
		{400, "*llmclient.InvalidRequestError", false},
		{401, "*llmclient.AuthenticationError", false},
		{403, "*llmclient.AccessDeniedError", false},
		{404, "*llmclient.NotFoundError", false},
		{408, "*llmclient.RequestTimeoutError", true},
		{413, "*llmclient.ContextLengthError", false},
		{422, "*llmclient.InvalidRequestError", false},
		{429, "*llmclient.RateLimitError", true},
		{500, "*llmclient.ServerError", true},
		{503, "*llmclient.ServerError", true},
		{418, "*llmclient.ProviderError", true},
	}

	for _, tt := range tests {
		err := ErrorFromStatusCode(tt.status, "boom", "testprov", "", nil)
		if err == nil {
			t.Fatalf("status %d: got nil error", tt.status)
		}
		if got := typeName(err); got != tt.wantType {
			t.Errorf("status %d: type = %s, want %s", tt.status, got, tt.wantType)
		}
		if got := IsRetryable(err); got != tt.retryable {
			t.Errorf("status %d: IsRetryable = %v, want %v", tt.status, got, tt.retryable)
		}
	}
}

func typeName(err error) string {
	switch err.(type) {
	case *InvalidRequestError:
		return "*llmclient.InvalidRequestError"
	case *AuthenticationError:
		return "*llmclient.AuthenticationError"
	case *AccessDeniedError:
		return "*llmclient.AccessDeniedError"
	case *NotFoundError:
		return "*llmclient.NotFoundError"
	case *RequestTimeoutError:
		return "*llmclient.RequestTimeoutError"
	case *ContextLengthError:
		return "*llmclient.ContextLengthError"
	case *RateLimitError:
		return "*llmclient.RateLimitError"
	case *ServerError:
		return "*llmclient.ServerError"
	case *ProviderError:
		return "*llmclient.ProviderError"
	default:
		return "unknown"
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(nil) {
		t.Error("nil error must not be retryable")
	}
	if IsRetryable(&AbortError{SDKError{Message: "cancelled"}}) {
		t.Error("AbortError must not be retryable")
	}
	if IsRetryable(&ConfigurationError{SDKError{Message: "bad config"}}) {
		t.Error("ConfigurationError must not be retryable")
	}
	if !IsRetryable(&NetworkError{SDKError{Message: "conn reset"}}) {
		t.Error("NetworkError must be retryable")
	}
	if !IsRetryable(errors.New("opaque")) {
		t.Error("unknown errors default to retryable")
	}
}

func TestSDKErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &SDKError{Message: "wrapped", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("errors.Is must find the cause")
	}
	if err.Error() != "wrapped: root cause" {
		t.Errorf("Error() = %q", err.Error())
	}
}
