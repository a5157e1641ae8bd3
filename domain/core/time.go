package core

import (
	"time"
)

// Timestamp represents a point in time with timezone awareness
type Timestamp time.Time

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now().UTC())
}

// Since returns the elapsed time from t until now
func (t Timestamp) Since() time.Duration {
	return time.Since(time.Time(t))
}

// MarshalText renders the timestamp as RFC3339 with nanoseconds
func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(time.Time(t).Format(time.RFC3339Nano)), nil
}
