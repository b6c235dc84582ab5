package core

import (
	"time"
)

// Timestamp represents a point in time, always stored in UTC
type Timestamp time.Time

// NewTimestamp creates a new timestamp from time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UTC())
}

// Now returns the current timestamp
func Now() Timestamp {
	return NewTimestamp(time.Now())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// IsZero checks if the timestamp is zero
func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// ISO formats the timestamp the way manifest rows carry it, e.g. 2024-01-02T03:04:05Z
func (t Timestamp) ISO() string {
	return time.Time(t).UTC().Format("2006-01-02T15:04:05Z")
}
