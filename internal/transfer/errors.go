package transfer

import "errors"

var (
	// ErrNotFound indicates the self-transfer record does not exist.
	ErrNotFound = errors.New("self-transfer not found")
	// ErrInvalidStatus indicates the status is outside the self-transfer set.
	ErrInvalidStatus = errors.New("status not valid for self-transfer")
	// ErrStatusNotAllowed indicates the transition is not permitted from the
	// current status.
	ErrStatusNotAllowed = errors.New("status transition not allowed")
	// ErrSameWarehouse indicates source and destination are identical.
	ErrSameWarehouse = errors.New("source and destination warehouse must differ")
)
