package controlplane

import "errors"

// Sentinel errors for control plane operations.
var (
	ErrInvalidMessage = errors.New("invalid message")
	ErrMissingAgent   = errors.New("agent_id is required")
	ErrInvalidQuery   = errors.New("invalid query")
	ErrNoStore        = errors.New("no store configured")
)
