package clock

import "time"

// Clock provides time to the application.
// Export filenames are derived from it, so tests pin it with a manual clock.
type Clock interface {
	Now() time.Time
}
