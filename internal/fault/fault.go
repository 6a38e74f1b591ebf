// Package fault defines the error kinds the reasoning core surfaces to its
// callers. The core wraps these sentinels with context via fmt.Errorf and %w;
// the HTTP layer maps them to status codes.
package fault

import "errors"

var (
	// ErrNotFound indicates a referenced entity is absent from the snapshot.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates a malformed event payload or out-of-range
	// scenario parameter.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidGraph indicates a dependency cycle detected during graph
	// construction.
	ErrInvalidGraph = errors.New("invalid graph")
	// ErrInternal indicates a broken internal invariant (e.g. the
	// contribution breakdown disagreeing with the reported slip). Calls
	// failing with ErrInternal must never return partial results.
	ErrInternal = errors.New("internal invariant violation")
)
