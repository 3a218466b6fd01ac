package clock

import (
	"time"

	clockport "github.com/jubilee25/celebration-api/internal/ports/out/clock"
)

// SystemClock is the production clock. Export filenames and created_at stamps are
// derived from it, so it always reports UTC.
type SystemClock struct{}

var _ clockport.Clock = SystemClock{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC() }
