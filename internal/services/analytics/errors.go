package analytics

import (
	"errors"
	"fmt"
)

// ErrInvalidSnapshot marks an instrument whose listing data breaks a basic
// precondition. Such instruments are excluded from the batch.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

type InvalidSnapshotError struct {
	ID     int64
	Reason string
}

func (e *InvalidSnapshotError) Error() string {
	return fmt.Sprintf("%s %d: %s", ErrInvalidSnapshot, e.ID, e.Reason)
}

func (e *InvalidSnapshotError) Unwrap() error { return ErrInvalidSnapshot }
