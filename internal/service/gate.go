package service

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// fetchGate is the process-wide admission gate for review-site requests.
// It is shared by every scraper so that batch fan-out can never exceed the
// configured number of simultaneous in-flight requests, and it holds the
// slot for a polite delay after each request.
type fetchGate struct {
	sem   *semaphore.Weighted
	delay time.Duration
}

func newFetchGate(concurrency int64, delay time.Duration) *fetchGate {
	return &fetchGate{
		sem:   semaphore.NewWeighted(concurrency),
		delay: delay,
	}
}

func (g *fetchGate) acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// release pauses for the polite delay before freeing the slot, spacing out
// consecutive requests even at concurrency 1.
func (g *fetchGate) release() {
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	g.sem.Release(1)
}
