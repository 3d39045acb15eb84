package services

import "errors"

// Sentinel errors surfaced by the game engine. Controllers map these to HTTP
// statuses; none of them is fatal to the process.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSuspended         = errors.New("account suspended")
	ErrAlreadyTerminal   = errors.New("game already ended")
	ErrUnknownPattern    = errors.New("unknown winning pattern")
)
