// internal/core/domain/item.go
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InventoryItem represents a single catalog item tracked by the ledger
type InventoryItem struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	OnHand         int             `json:"on_hand"`
	MaxQty         int             `json:"max_qty,omitempty"`
	OrderThreshold int             `json:"order_threshold,omitempty"`
	ReplenishQty   int             `json:"replenish_qty,omitempty"`
}

// Validate performs domain validation on the inventory item
func (i *InventoryItem) Validate() error {
	if i.Code == "" {
		return fmt.Errorf("code is required")
	}
	if i.Name == "" {
		return fmt.Errorf("name is required")
	}
	if i.UnitPrice.IsNegative() {
		return fmt.Errorf("unit_price cannot be negative")
	}
	if i.OnHand < 0 {
		return fmt.Errorf("on_hand cannot be negative")
	}
	return nil
}

// NeedsReplenishment reports whether on-hand stock has fallen to or below
// the item's reorder threshold. Items without a threshold never reorder.
func (i *InventoryItem) NeedsReplenishment() bool {
	return i.OrderThreshold > 0 && i.OnHand <= i.OrderThreshold
}
