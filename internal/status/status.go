package status

import "errors"

var (
	ErrInvalidName      = errors.New("session: display name must not be empty")
	ErrUnauthorized     = errors.New("auth: unauthorized")
	ErrAlreadyQueued    = errors.New("queue: session is already waiting for an opponent")
	ErrAlreadyInMatch   = errors.New("queue: session is already seated at a desk")
	ErrDeskNotFound     = errors.New("desk: desk not found")
	ErrNotParticipant   = errors.New("desk: session is not seated at this desk")
	ErrAlreadyResolved  = errors.New("desk: desk is already resolved")
	ErrInsufficientPool = errors.New("lottery: not enough entries in the pool")
)
