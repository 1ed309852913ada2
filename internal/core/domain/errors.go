// internal/core/domain/errors.go
package domain

import "errors"

// Sentinel errors returned by the ledger, receipt store and engine.
// Callers distinguish outcomes with errors.Is; storage failures are
// wrapped with %w instead and carry no sentinel.
var (
	ErrItemNotFound            = errors.New("item not found")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrInsufficientPayment     = errors.New("insufficient payment")
	ErrReceiptNotFound         = errors.New("receipt not found")
	ErrLineAlreadyReturned     = errors.New("line already returned")
	ErrReceiptAlreadyCancelled = errors.New("receipt already cancelled")
	ErrInvalidQuantity         = errors.New("invalid quantity")
	ErrEmptySale               = errors.New("sale has no items")
	ErrReturnConflict          = errors.New("receipt has individually returned lines")
)
