// Package ratelimit implements the single shared pacing primitive spec.md
// §5 requires between consecutive AustLII direct fetches: a process-scoped
// "last completion" timestamp guarded by one mutex, enforcing a uniform
// random 2.0-3.0s gap regardless of which caller (the citation
// context-fetcher or the verification fetcher) is issuing the request.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// AustLIIPacer serializes AustLII direct-fetch requests with a uniform
// random gap in [Min, Max] measured from the previous request's completion.
type AustLIIPacer struct {
	Min, Max time.Duration

	mu   sync.Mutex
	last time.Time

	now  func() time.Time
	rnd  *rand.Rand
}

// NewAustLIIPacer constructs a pacer enforcing a uniform-random gap in
// [min, max] between consecutive AustLII requests.
func NewAustLIIPacer(min, max time.Duration) *AustLIIPacer {
	return &AustLIIPacer{
		Min: min, Max: max,
		now: time.Now,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Wait blocks until the pacing gap since the previous request's completion
// has elapsed, then reserves this slot. Call MarkDone when the request
// actually completes.
func (p *AustLIIPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.last.IsZero() {
		p.last = p.nowFn()
		return nil
	}
	gap := p.randomGap()
	elapsed := p.nowFn().Sub(p.last)
	if elapsed >= gap {
		p.last = p.nowFn()
		return nil
	}
	remaining := gap - elapsed
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		p.last = p.nowFn()
		return nil
	}
}

// MarkDone records the completion timestamp used for the next Wait call.
// Call this while still holding logical "ownership" of the slot, i.e.
// immediately after the paced request finishes.
func (p *AustLIIPacer) MarkDone() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = p.nowFn()
}

func (p *AustLIIPacer) randomGap() time.Duration {
	min, max := p.Min, p.Max
	if max <= min {
		return min
	}
	span := max - min
	return min + time.Duration(p.rnd.Int63n(int64(span)))
}

func (p *AustLIIPacer) nowFn() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}
