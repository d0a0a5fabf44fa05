// Package apierr defines the small typed error taxonomy the gateway and
// verification chain use to distinguish retryable failures, terminal
// failures, and citation-verification failures, per spec.md §7 and §9
// ("use a small typed error taxonomy ... examine error type where possible").
package apierr

import (
	"errors"
	"fmt"
	"strings"
)

// RetryableAPIError wraps a transient failure: connection errors, rate
// limits, streaming errors, or an in-body error whose message signals
// overload/busy/timeout.
type RetryableAPIError struct {
	Cause error
}

func (e *RetryableAPIError) Error() string { return fmt.Sprintf("retryable API error: %v", e.Cause) }
func (e *RetryableAPIError) Unwrap() error { return e.Cause }

// NonRetryableAPIError wraps a terminal failure: HTTP 413 or a
// maximum-context-length message. Callers should invoke truncation rather
// than retrying the gateway.
type NonRetryableAPIError struct {
	Cause error
}

func (e *NonRetryableAPIError) Error() string {
	return fmt.Sprintf("non-retryable API error: %v", e.Cause)
}
func (e *NonRetryableAPIError) Unwrap() error { return e.Cause }

// AuthenticationError wraps an authentication/quota/billing/API-disabled/
// permission failure, surfaced with one-line actionable guidance.
type AuthenticationError struct {
	Guidance string
	Cause    error
}

func (e *AuthenticationError) Error() string {
	if e.Guidance != "" {
		return e.Guidance
	}
	return fmt.Sprintf("authentication error: %v", e.Cause)
}
func (e *AuthenticationError) Unwrap() error { return e.Cause }

// CitationIssue categorises a single unverified citation for
// CitationVerificationError's sub-lists.
type CitationIssue struct {
	Citation string
	Category string // "format" | "not_found" | "other"
	Reason   string
}

// CitationVerificationError is raised in strict mode when unverified
// citations remain after automatic verification.
type CitationVerificationError struct {
	FormatIssues []CitationIssue
	NotFound     []CitationIssue
	Other        []CitationIssue
}

func (e *CitationVerificationError) Error() string {
	total := len(e.FormatIssues) + len(e.NotFound) + len(e.Other)
	return fmt.Sprintf("citation verification failed: %d unresolved citation(s) (%d format, %d not found, %d other)",
		total, len(e.FormatIssues), len(e.NotFound), len(e.Other))
}

// retryableSubstrings are the lowercase in-body error fragments that mark an
// otherwise-unclassified error as retryable, per spec.md §4.1.
var retryableSubstrings = []string{"overloaded", "rate limit", "timeout", "busy", "error processing stream"}

// nonRetryableSubstrings mark a terminal, non-retryable failure.
var nonRetryableSubstrings = []string{
	"payload too large", "prompt is too long", "request entity too large", "maximum context length",
}

// IsRetryable classifies err (or its message) as retryable per spec.md §4.1's
// retry policy. Typed errors are checked first; a message-substring fallback
// covers provider-specific phrasing.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var r *RetryableAPIError
	if errors.As(err, &r) {
		return true
	}
	var n *NonRetryableAPIError
	if errors.As(err, &n) {
		return false
	}
	var a *AuthenticationError
	if errors.As(err, &a) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range nonRetryableSubstrings {
		if strings.Contains(msg, s) {
			return false
		}
	}
	for _, s := range retryableSubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// IsNonRetryable reports whether err should be surfaced immediately (HTTP
// 413 or context-length overflow) so a caller can invoke truncation.
func IsNonRetryable(err error) bool {
	if err == nil {
		return false
	}
	var n *NonRetryableAPIError
	if errors.As(err, &n) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range nonRetryableSubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// IsTokenLimitError reports whether err's message matches the
// truncation.Manager's token-limit vocabulary (spec.md §4.4).
func IsTokenLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"token", "context", "length", "too long", "maximum", "exceeded", "limit", "too many tokens"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
