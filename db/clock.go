package db

import (
	"time"

	"github.com/google/uuid"
)

// Clock stamps server-side creation times.
type Clock func() time.Time

// Now returns the current time in UTC at the store's millisecond precision.
func (c Clock) Now() time.Time {
	now := time.Now
	if c != nil {
		now = c
	}
	return now().UTC().Truncate(time.Millisecond)
}

// newDocumentId returns a time-ordered UUID so ids sort in insertion order.
func newDocumentId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
