package index

import (
	"errors"
	"fmt"
)

var (
	// ErrDataIntegrity is the base error for malformed build input. Every
	// IntegrityError unwraps to it.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrNoRegions is returned when Build is called without any records.
	ErrNoRegions = errors.New("no region records")

	// ErrUnknownRegion marks an id access outside the loaded region table.
	ErrUnknownRegion = errors.New("unknown region id")

	// ErrInconsistent marks an index structure referencing an id missing
	// from the region table.
	ErrInconsistent = errors.New("index/table inconsistency")
)

// IntegrityError describes one offending record encountered during build
// validation or bundle assembly.
type IntegrityError struct {
	ID     uint32
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("region %d: %s", e.ID, e.Reason)
}

func (e *IntegrityError) Unwrap() error {
	return ErrDataIntegrity
}

func integrityErr(id uint32, format string, args ...any) error {
	return &IntegrityError{ID: id, Reason: fmt.Sprintf(format, args...)}
}
