package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/amishk599/jobscout/internal/ai"
)

// Limiter enforces a minimum delay between requests sharing a key.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    time.Duration
}

// NewLimiter creates a limiter allowing one request per minDelay for each key.
// A non-positive minDelay disables limiting.
func NewLimiter(minDelay time.Duration) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		every:    minDelay,
	}
}

// PerMinute creates a limiter allowing n requests per minute for each key.
func PerMinute(n int) *Limiter {
	if n <= 0 {
		return NewLimiter(0)
	}
	return NewLimiter(time.Minute / time.Duration(n))
}

func (l *Limiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[key]
	if !ok {
		limit := rate.Inf
		if l.every > 0 {
			limit = rate.Every(l.every)
		}
		lim = rate.NewLimiter(limit, 1)
		l.limiters[key] = lim
	}
	return lim
}

// Wait blocks until a request for key is allowed.
// Returns an error if the context is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	if err := l.limiter(key).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", key, err)
	}
	return nil
}

// Provider throttles calls to an LLM provider.
type Provider struct {
	inner   ai.LLMProvider
	limiter *Limiter
}

// NewProvider wraps an LLM provider so at most requestsPerMinute completions
// start per minute. Zero means unlimited.
func NewProvider(inner ai.LLMProvider, requestsPerMinute int) *Provider {
	return &Provider{
		inner:   inner,
		limiter: PerMinute(requestsPerMinute),
	}
}

func (p *Provider) Complete(ctx context.Context, prompt string, out ai.OutputSchema) (string, error) {
	if err := p.limiter.Wait(ctx, "llm"); err != nil {
		return "", err
	}
	return p.inner.Complete(ctx, prompt, out)
}
