package idempotency

import (
	"testing"
	"time"

	"github.com/Overland-East-Bay/greetings-api/internal/adapters/contracttest"
	memclock "github.com/Overland-East-Bay/greetings-api/internal/adapters/memory/clock"
	idempotencyport "github.com/Overland-East-Bay/greetings-api/internal/ports/out/idempotency"
)

func TestContract_IdempotencyStore(t *testing.T) {
	contracttest.RunIdempotencyStore(t, func(t *testing.T) (idempotencyport.Store, func()) {
		t.Helper()
		return NewStore(memclock.NewManualClock(time.Unix(123, 0).UTC()), 0), nil
	})
}
