// Package service implements the business logic of the trust and
// entitlement engine.
package service

import "time"

// Clock supplies the current time. Services never read time.Now directly;
// injecting the clock makes expiry and debounce logic deterministic in tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return ClockFunc(time.Now)
}
