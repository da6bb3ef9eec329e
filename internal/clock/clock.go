// Package clock provides the single wall-clock timestamp source used by the
// store. Every created_at/updated_at/started_at/completed_at value in the
// schema is stamped from here (or, for CreatePlan, from its explicit
// createdAt argument), never from ad-hoc time.Now() calls. The package has
// no override hook: Now always reads the system clock.
package clock

import "time"

// minUnix and maxUnix bound the sane range for a wall-clock reading:
// 2020-01-01T00:00:00Z and 2100-01-01T00:00:00Z.
const (
	minUnix = 1577836800
	maxUnix = 4102444800
)

// Now returns the current wall-clock time in UTC as a time.Time, truncated
// to second resolution to match the schema's INTEGER epoch-seconds columns.
//
// A clock reading outside [2020-01-01, 2100-01-01] is treated as a
// catastrophic system failure (a stopped or wildly wrong RTC makes every
// downstream invariant unverifiable) and panics the process, per spec.
func Now() time.Time {
	t := time.Now().UTC().Truncate(time.Second)
	sec := t.Unix()
	if sec <= 0 || sec < minUnix || sec > maxUnix {
		panic("clock: wall-clock time out of sane range: " + t.String())
	}
	return t
}
