package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"tariffwatch/internal/model"
	"tariffwatch/internal/store"
)

// RetryPolicy holds the two-tier retry configuration.
type RetryPolicy struct {
	FastAttempts     int
	FastInterval     time.Duration
	ExtendedAttempts int
	ExtendedInterval time.Duration
}

// DefaultRetryPolicy is five quick attempts a minute apart, then twenty more
// ten minutes apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		FastAttempts:     5,
		FastInterval:     time.Minute,
		ExtendedAttempts: 20,
		ExtendedInterval: 10 * time.Minute,
	}
}

// Collector owns the acquisition lifecycle: it drives the retry tiers, falls
// back to the last good snapshot when both tiers exhaust, and publishes the
// result for concurrent readers.
type Collector struct {
	Fetcher Fetcher
	Policy  RetryPolicy
	Store   store.Store

	latest atomic.Pointer[model.ForecastSnapshot]
}

// NewCollector creates a new Collector. A zero policy falls back to the
// defaults, a nil store to noop.
func NewCollector(fetcher Fetcher, policy RetryPolicy, st store.Store) *Collector {
	if policy == (RetryPolicy{}) {
		policy = DefaultRetryPolicy()
	}
	if st == nil {
		st = store.NewNoopStore()
	}
	return &Collector{Fetcher: fetcher, Policy: policy, Store: st}
}

// Snapshot returns the most recently published snapshot, or nil before the
// first successful refresh. The returned value is never mutated; readers that
// need a consistent view across several reads sample this once and reuse the
// reference.
func (c *Collector) Snapshot() *model.ForecastSnapshot {
	return c.latest.Load()
}

// Restore seeds the published snapshot from a persisted copy so stale-serve
// works across restarts.
func (c *Collector) Restore(snap *model.ForecastSnapshot) {
	if snap != nil {
		c.latest.Store(snap)
	}
}

// Update runs one full refresh cycle against the currently published snapshot
// and publishes the outcome. Driven by the scheduler on a fixed period; the
// scheduler guarantees a single Update is in flight at a time.
func (c *Collector) Update(ctx context.Context) error {
	prev := c.latest.Load()
	snap, stale, err := c.Refresh(ctx, prev)
	if err != nil {
		return err
	}
	c.latest.Store(snap)
	if !stale {
		if err := c.Store.Save(snap); err != nil {
			log.Printf("[ERROR] persist snapshot: %v", err)
		}
	}
	return nil
}

// Refresh obtains a fresh snapshot or degrades to prev. The bool result is
// the stale flag: true means both tiers exhausted and prev is being served.
// With no prev to degrade to, the terminal error wraps ErrNoData.
func (c *Collector) Refresh(ctx context.Context, prev *model.ForecastSnapshot) (*model.ForecastSnapshot, bool, error) {
	snap, err := c.runTier(ctx, tierFast, c.Policy.FastAttempts, c.Policy.FastInterval)
	if err == nil {
		return snap, false, nil
	}
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}

	log.Printf("[INFO] fast retries exhausted, starting extended retry cycle (source=%s)", c.Fetcher.Name())
	snap, err = c.runTier(ctx, tierExtended, c.Policy.ExtendedAttempts, c.Policy.ExtendedInterval)
	if err == nil {
		return snap, false, nil
	}
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}

	if prev != nil {
		log.Printf("[WARN] serving cached forecast from %s: %v", prev.FetchedAt.Format(time.RFC3339), err)
		return prev, true, nil
	}
	return nil, false, fmt.Errorf("%w: %v", ErrNoData, err)
}

type tier string

const (
	tierFast     tier = "fast"
	tierExtended tier = "extended"
)

// runTier performs up to attempts fetches with a fixed sleep between
// failures. Sleeps honour ctx so a shutdown aborts the loop without
// publishing anything.
func (c *Collector) runTier(ctx context.Context, t tier, attempts int, interval time.Duration) (*model.ForecastSnapshot, error) {
	if attempts < 1 {
		attempts = 1
	}
	var snap *model.ForecastSnapshot
	attempt := 0

	op := func() error {
		attempt++
		s, err := c.Fetcher.Fetch(ctx)
		if err != nil {
			if retryable(err) {
				return err
			}
			// Unexpected failure: counted like the others but ends the tier.
			return backoff.Permanent(err)
		}
		snap = s
		return nil
	}
	notify := func(err error, _ time.Duration) {
		logAttempt(t, attempt, attempts, err)
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), uint64(attempts-1)),
		ctx,
	)
	if err := backoff.RetryNotify(op, bo, notify); err != nil {
		if ctx.Err() == nil {
			// the last attempt's failure is not seen by notify
			logAttempt(t, attempt, attempts, err)
		}
		return nil, err
	}
	return snap, nil
}

func logAttempt(t tier, attempt, attempts int, err error) {
	kind := "network"
	if IsValidation(err) {
		kind = "validation"
	}
	log.Printf("[WARN] attempt %d/%d (%s tier) failed to fetch forecast: %v (%s)", attempt, attempts, t, err, kind)
}

// retryable classifies an attempt's failure: transport errors, non-2xx
// statuses and payload validation failures all count as retryable within the
// current tier.
func retryable(err error) bool {
	var netErr *url.Error
	var statusErr *StatusError
	return errors.As(err, &netErr) || errors.As(err, &statusErr) || IsValidation(err)
}
