package clock

import "time"

// Clock is the time source every service takes as a dependency, so
// purchase, scan, and transfer timestamps are testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns the wall clock. All times are UTC.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock struct {
	now time.Time
}

// NewFixed pins the clock to a single instant, for tests.
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t.UTC()}
}

func (f fixedClock) Now() time.Time {
	return f.now
}
