package ports

import "time"

// Clock abstracts time for handlers so tests can pin it.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock returns UTC wall time.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })
