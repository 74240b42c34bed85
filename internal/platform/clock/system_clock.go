package clock

import (
	"time"

	clockport "github.com/Overland-East-Bay/greetings-api/internal/ports/out/clock"
)

// SystemClock returns the current wall-clock time in UTC.
type SystemClock struct{}

var _ clockport.Clock = SystemClock{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC() }
