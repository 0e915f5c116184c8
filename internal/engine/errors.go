package engine

import (
	"errors"
	"fmt"
)

// ErrNoActiveSchedule is returned by mutations attempted before a weekend
// schedule has been created or loaded.
var ErrNoActiveSchedule = errors.New("no active weekend schedule")

// InvalidPermutationError indicates that a reorder request did not cover
// exactly the current id set of the targeted (day, period) partition.
type InvalidPermutationError struct {
	Day    string
	Period string
	Reason string
}

func (e *InvalidPermutationError) Error() string {
	return fmt.Sprintf("invalid reorder for %s/%s: %s", e.Day, e.Period, e.Reason)
}
