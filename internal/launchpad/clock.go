package launchpad

import "time"

// Clock supplies the current time in unix seconds. Injected so tests
// and replayed histories control admission timing exactly.
type Clock interface {
	Now() int64
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() int64

// Now implements Clock.
func (f ClockFunc) Now() int64 { return f() }

// SystemClock reads the wall clock.
func SystemClock() Clock {
	return ClockFunc(func() int64 { return time.Now().Unix() })
}
