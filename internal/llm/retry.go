package llm

import (
	"flag"
	"math"
	"time"
)

// maxAttempts is the gateway's retry ceiling, per spec.md §4.1.
const maxAttempts = 5

// backoffBase and backoffCap bound the exponential backoff schedule
// (multiplier ~0.5s, max ~10s), per spec.md §4.1.
const backoffBase = 500 * time.Millisecond
const backoffCap = 10 * time.Second

// inTestEnvironment reports whether the process is running under `go test`,
// per spec.md §4.1's "skip the wait entirely" clause. flag.Lookup("test.v")
// is the standard way to detect a test binary without importing "testing"
// from non-test code.
func inTestEnvironment() bool {
	return flag.Lookup("test.v") != nil
}

// backoffDelay returns the exponential backoff for the given 0-indexed
// retry attempt, skipping the wait in a detected test environment.
func backoffDelay(attempt int) time.Duration {
	if inTestEnvironment() {
		return 0
	}
	d := float64(backoffBase) * math.Pow(2, float64(attempt))
	if d > float64(backoffCap) {
		d = float64(backoffCap)
	}
	return time.Duration(d)
}
