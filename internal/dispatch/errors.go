package dispatch

import "errors"

// Domain errors for the dispatch lifecycle.
var (
	// ErrNotFound indicates the dispatch id does not exist.
	ErrNotFound = errors.New("dispatch not found")

	// ErrInvalidStatus indicates a status outside the owning table's set.
	ErrInvalidStatus = errors.New("status not in allowed set")
	// ErrStatusNotAllowed indicates a valid status that the current state
	// cannot transition to.
	ErrStatusNotAllowed = errors.New("status transition not allowed")

	// ErrBarcodeMismatch indicates the supplied barcode belongs to neither
	// the header nor any item row.
	ErrBarcodeMismatch = errors.New("barcode does not belong to dispatch")

	// Validation errors.
	ErrEmptyDispatch   = errors.New("dispatch requires a product or at least one item")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)
