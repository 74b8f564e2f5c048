package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID is returned when an inserted node or edge reuses a live id.
	// IDs come from a monotonic generator, so hitting this is a programming error.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrDanglingReference matches any *DanglingReferenceError via errors.Is.
	ErrDanglingReference = errors.New("dangling reference")
)

// DanglingReferenceError reports an edge whose endpoint is not a live node.
type DanglingReferenceError struct {
	EdgeID  string
	Missing string // node id that could not be found
	Role    string // "source" | "target"
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("edge %s: %s node %q not found", e.EdgeID, e.Role, e.Missing)
}

// Is lets errors.Is(err, ErrDanglingReference) succeed.
func (e *DanglingReferenceError) Is(target error) bool {
	return target == ErrDanglingReference
}
