package model

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a requested date or snapshot is genuinely absent.
// It is a normal result value for queries, not a fault.
var ErrNotFound = errors.New("not found")

// ErrAlreadyPresent reports that an appended snapshot already exists under its
// content key. The store is unchanged; callers may treat this as success.
var ErrAlreadyPresent = errors.New("snapshot already present")

// MalformedSnapshotError reports a structural invariant violation detected on
// ingestion. The snapshot is rejected, never stored; Entries carries the
// offending entries so the caller can report them.
type MalformedSnapshotError struct {
	Date    Date
	Reason  string
	Entries []Entry
}

func (e *MalformedSnapshotError) Error() string {
	if len(e.Entries) == 0 {
		return fmt.Sprintf("malformed snapshot %s: %s", e.Date, e.Reason)
	}
	return fmt.Sprintf("malformed snapshot %s: %s (%d offending entries)", e.Date, e.Reason, len(e.Entries))
}
