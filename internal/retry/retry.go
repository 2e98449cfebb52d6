package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// jitterFraction spreads retries of concurrent sources so they do not hit
// a recovering upstream in lockstep.
const jitterFraction = 0.3

// Adapter wraps a SourceAdapter and repeats fetches that failed for a
// transient reason: a 429, a 5xx, or a transport error. Context errors and
// other client errors are returned at once.
type Adapter struct {
	inner      model.SourceAdapter
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewAdapter returns inner wrapped with up to maxRetries extra attempts.
// The first retry waits baseDelay and each further one doubles it.
func NewAdapter(inner model.SourceAdapter, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Adapter {
	return &Adapter{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

func (a *Adapter) Name() string { return a.inner.Name() }

func (a *Adapter) Ready() error { return a.inner.Ready() }

func (a *Adapter) Fetch(ctx context.Context, keywords, location string, limit int) ([]model.Posting, error) {
	for attempt := 0; ; attempt++ {
		postings, err := a.inner.Fetch(ctx, keywords, location, limit)
		if err == nil {
			if attempt > 0 {
				a.logger.Debug("source recovered", "source", a.inner.Name(), "attempts", attempt+1)
			}
			return postings, nil
		}
		if attempt >= a.maxRetries || !transient(err) {
			return nil, err
		}

		delay := a.backoffDelay(attempt+1, err)
		a.logger.Warn("source fetch failed, retrying",
			"source", a.inner.Name(),
			"attempt", attempt+1,
			"max_retries", a.maxRetries,
			"delay", delay,
			"error", err,
		)
		if err := sleep(ctx, delay); err != nil {
			return nil, model.Unavailable(a.inner.Name(), fmt.Errorf("retry cancelled: %w", err))
		}
	}
}

// backoffDelay returns the wait before retry number attempt (1-based). A
// Retry-After hint on the error wins over the computed backoff.
func (a *Adapter) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := a.baseDelay << (attempt - 1)
	spread := (rand.Float64()*2 - 1) * jitterFraction
	return time.Duration(float64(delay) * (1 + spread))
}

func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	// transport level: DNS, reset, refused
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
