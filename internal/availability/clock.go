package availability

import "time"

// Clock supplies "now". Injected so today-floor and elapsed-day behavior are
// testable with fixed instants.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
