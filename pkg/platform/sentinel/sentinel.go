package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about stored rows, not validation failures:
// - ErrNotFound: row does not exist in the store
// - ErrAlreadyUsed: a uniqueness-constrained key is already taken
// - ErrInvalidState: row is in the wrong state for the requested mutation
// - ErrUnavailable: store temporarily unreachable
//
// For validation errors (bad input, missing fields) use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
