// internal/core/domain/receipt.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptStatus represents the lifecycle state of a committed receipt
type ReceiptStatus string

const (
	ReceiptCompleted ReceiptStatus = "completed"
	ReceiptCancelled ReceiptStatus = "cancelled"
)

// LineItem is a single sold line on a receipt. UnitPrice is the price
// snapshotted at sale time; later catalog changes never affect it.
type LineItem struct {
	ItemCode    string          `json:"item_code"`
	ItemName    string          `json:"item_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	ReturnedQty int             `json:"returned_qty"`
	Returned    bool            `json:"returned"`
}

// Subtotal is quantity times the snapshotted unit price.
func (l *LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// RemainingQty is the portion of the line not yet returned.
func (l *LineItem) RemainingQty() int {
	return l.Quantity - l.ReturnedQty
}

// Receipt represents a settled sale
type Receipt struct {
	ID           int64           `json:"id"`
	Lines        []LineItem      `json:"lines"`
	Total        decimal.Decimal `json:"total"`
	CashTendered decimal.Decimal `json:"cash_tendered"`
	Change       decimal.Decimal `json:"change"`
	Status       ReceiptStatus   `json:"status"`
	Cashier      string          `json:"cashier,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	CancelledAt  *time.Time      `json:"cancelled_at,omitempty"`
}

// ComputeTotal sums the line subtotals.
func (r *Receipt) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range r.Lines {
		total = total.Add(r.Lines[i].Subtotal())
	}
	return total
}

// Validate checks the receipt's arithmetic invariants before storage
func (r *Receipt) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("receipt id must be positive")
	}
	if len(r.Lines) == 0 {
		return fmt.Errorf("receipt must have at least one line")
	}
	for i := range r.Lines {
		if r.Lines[i].Quantity <= 0 {
			return fmt.Errorf("line %d: quantity must be positive", i)
		}
		if r.Lines[i].UnitPrice.IsNegative() {
			return fmt.Errorf("line %d: unit_price cannot be negative", i)
		}
	}
	if !r.Total.Equal(r.ComputeTotal()) {
		return fmt.Errorf("total %s does not match line sum %s", r.Total, r.ComputeTotal())
	}
	if r.CashTendered.LessThan(r.Total) {
		return fmt.Errorf("cash_tendered %s is less than total %s", r.CashTendered, r.Total)
	}
	if !r.Change.Equal(r.CashTendered.Sub(r.Total)) {
		return fmt.Errorf("change %s does not match tendered minus total", r.Change)
	}
	return nil
}

// PrepareForStorage sets storage defaults before the receipt is committed
func (r *Receipt) PrepareForStorage() {
	if r.Status == "" {
		r.Status = ReceiptCompleted
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
}
