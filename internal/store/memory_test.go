package store

import (
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/store/storetest"
)

func TestMemoryStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T, now func() time.Time) model.Store {
		return NewMemoryStore(WithClock(now))
	})
}
