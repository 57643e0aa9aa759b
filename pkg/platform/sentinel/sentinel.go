package sentinel

import "errors"

// Infrastructure facts returned (usually wrapped) by stores, resolvers and
// publishers. Services translate them into pkg/domain-errors codes:
//   - ErrNotFound: no record or no profile for the key
//   - ErrConflict: the write collides with existing state
//   - ErrExpired: the entry outlived its deadline
//   - ErrInvalidState: the entry is in the wrong state for the call
//   - ErrUnavailable: backend unreachable or timed out
//   - ErrClosed: the component was shut down
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrClosed       = errors.New("closed")
)
