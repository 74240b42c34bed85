package clock

import "time"

// Clock provides time to the application (idempotency record ages, timestamps).
// Tests substitute a manual implementation to control expiry deterministically.
type Clock interface {
	Now() time.Time
}
