package ga

import "errors"

// Error taxonomy for engine operations. Callers match with errors.Is.
var (
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrUninitialized       = errors.New("engine is not initialized")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrNoEligiblePartner   = errors.New("no eligible partner")
	ErrDivisionUndefined   = errors.New("division undefined")
	ErrMalformedCheckpoint = errors.New("malformed checkpoint")
	ErrIO                  = errors.New("checkpoint io failure")
)
