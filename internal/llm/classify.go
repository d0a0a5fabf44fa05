package llm

import (
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/litassist-core/internal/apierr"
)

// retryableMessageFragments and nonRetryableMessageFragments mirror
// apierr's vocabulary but are checked here against the raw provider error
// before it is wrapped, so the gateway can classify errors that never went
// through apierr (e.g. a bare network error), per spec.md §4.1.
var retryableMessageFragments = []string{"overloaded", "rate limit", "timeout", "busy", "error processing stream"}
var nonRetryableMessageFragments = []string{"payload too large", "prompt is too long", "request entity too large", "maximum context length"}
var authMessageFragments = []string{"authentication", "invalid api key", "quota", "billing", "permission", "disabled"}

// classifyAPIError wraps a raw error returned by the chat-completion call
// into the typed taxonomy of internal/apierr, per spec.md §4.1's retry
// policy: authentication/quota errors and 413/context-length overflows are
// non-retryable; connection/rate-limit/stream errors are retryable.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 413 {
			return &apierr.NonRetryableAPIError{Cause: err}
		}
		if matchesAny(apiErr.Type, authMessageFragments) || matchesAny(apiErr.Message, authMessageFragments) {
			return &apierr.AuthenticationError{Cause: err, Guidance: "authentication failed: check the configured API key and account status for this provider"}
		}
	}

	msg := strings.ToLower(err.Error())
	if matchesAny(msg, nonRetryableMessageFragments) {
		return &apierr.NonRetryableAPIError{Cause: err}
	}
	if matchesAny(msg, authMessageFragments) {
		return &apierr.AuthenticationError{Cause: err, Guidance: "authentication failed: check the configured API key and account status for this provider"}
	}
	if matchesAny(msg, retryableMessageFragments) {
		return &apierr.RetryableAPIError{Cause: err}
	}
	return err
}

func matchesAny(haystack string, fragments []string) bool {
	lower := strings.ToLower(haystack)
	for _, f := range fragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}
