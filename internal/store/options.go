package store

import (
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// Option configures a storage engine.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used to stamp CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// timestamp returns the clock reading at the precision every engine can store.
func (o options) timestamp() time.Time {
	return o.now().UTC().Truncate(time.Microsecond)
}

func nullableEnum[T ~string](v *T) any {
	if v == nil {
		return nil
	}
	return string(*v)
}

func enumPtr[T ~string](s *string) *T {
	if s == nil || *s == "" {
		return nil
	}
	v := T(*s)
	return &v
}

var (
	_ model.Store = (*SQLiteStore)(nil)
	_ model.Store = (*PostgresStore)(nil)
	_ model.Store = (*MemoryStore)(nil)
)
