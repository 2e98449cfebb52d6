package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. ok is false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Adapter is a read-through cache in front of a SourceAdapter. Only
// successful fetches are stored; cache failures fall back to the source.
type Adapter struct {
	inner  model.SourceAdapter
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewAdapter wraps inner so identical fetches within ttl reuse the stored result.
func NewAdapter(inner model.SourceAdapter, cache Cache, ttl time.Duration, logger *slog.Logger) *Adapter {
	return &Adapter{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func (a *Adapter) Name() string { return a.inner.Name() }

func (a *Adapter) Ready() error { return a.inner.Ready() }

func (a *Adapter) Fetch(ctx context.Context, keywords, location string, limit int) ([]model.Posting, error) {
	if limit <= 0 {
		return nil, nil
	}

	key := Key(a.inner.Name(), keywords, location, limit)

	raw, ok, err := a.cache.Get(ctx, key)
	switch {
	case err != nil:
		a.logger.Warn("cache read failed", "source", a.inner.Name(), "error", err)
	case ok:
		var postings []model.Posting
		if err := json.Unmarshal(raw, &postings); err == nil {
			a.logger.Debug("cache hit", "source", a.inner.Name(), "postings", len(postings))
			return postings, nil
		}
		a.logger.Warn("discarding corrupt cache entry", "source", a.inner.Name(), "key", key)
	}

	postings, err := a.inner.Fetch(ctx, keywords, location, limit)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(postings)
	if err != nil {
		return postings, nil
	}
	if err := a.cache.Set(ctx, key, data, a.ttl); err != nil {
		a.logger.Warn("cache write failed", "source", a.inner.Name(), "error", err)
	}
	return postings, nil
}

// Key builds the cache key for one fetch. Keywords and location are
// case-folded so trivially different queries share an entry.
func Key(source, keywords, location string, limit int) string {
	return fmt.Sprintf("jobscout:fetch:%s|%s|%s|%d",
		source,
		strings.ToLower(strings.TrimSpace(keywords)),
		strings.ToLower(strings.TrimSpace(location)),
		limit,
	)
}
