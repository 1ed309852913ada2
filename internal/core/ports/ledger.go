// internal/core/ports/ledger.go
package ports

import (
	"context"

	"github.com/retailflow/pos-be/internal/core/domain"
)

// Ledger defines the in-memory inventory port used by the transaction engine.
// Lookup and Items return copies; callers never see live ledger state.
type Ledger interface {
	Lookup(ctx context.Context, code string) (*domain.InventoryItem, error)
	Items(ctx context.Context) []domain.InventoryItem
	ReserveAndDecrement(ctx context.Context, code string, qty int) error
	Restock(ctx context.Context, code string, qty int) error
	BelowThreshold(ctx context.Context) []domain.InventoryItem
}
