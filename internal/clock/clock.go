// Package clock lets the update date arithmetic and the collector freshness
// gate run against a chosen instant in tests.
package clock

import "time"

// Clock provides the current instant. Callers convert it to the portal
// timezone themselves.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using actual system time
type RealClock struct{}

// Now returns the current system time
func (RealClock) Now() time.Time {
	return time.Now()
}

// Fixed is a Clock frozen at a given instant
type Fixed time.Time

// Now returns the frozen instant
func (f Fixed) Now() time.Time {
	return time.Time(f)
}
