// internal/core/services/ledger.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/retailflow/pos-be/internal/core/domain"
	"github.com/retailflow/pos-be/internal/core/ports"
)

// Ledger is the in-memory inventory table. A single mutex serializes all
// access; the till runs one command at a time today but nothing here breaks
// if a second goroutine ever shows up.
type Ledger struct {
	mu     sync.Mutex
	items  map[string]*domain.InventoryItem
	order  []string
	logger *slog.Logger
}

// Statically assert that *Ledger implements the Ledger port.
var _ ports.Ledger = (*Ledger)(nil)

// NewLedger builds a ledger from catalog items, preserving catalog order.
func NewLedger(items []domain.InventoryItem, logger *slog.Logger) (*Ledger, error) {
	l := &Ledger{
		items:  make(map[string]*domain.InventoryItem, len(items)),
		order:  make([]string, 0, len(items)),
		logger: logger.With(slog.String("service", "ledger")),
	}

	for i := range items {
		item := items[i]
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("invalid catalog item %q: %w", item.Code, err)
		}
		if _, exists := l.items[item.Code]; exists {
			return nil, fmt.Errorf("duplicate catalog item %q", item.Code)
		}
		l.items[item.Code] = &item
		l.order = append(l.order, item.Code)
	}

	return l, nil
}

// Lookup returns a copy of the item, or ErrItemNotFound.
func (l *Ledger) Lookup(_ context.Context, code string) (*domain.InventoryItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[code]
	if !ok {
		return nil, fmt.Errorf("item %q: %w", code, domain.ErrItemNotFound)
	}

	cp := *item
	return &cp, nil
}

// Items returns a snapshot of all items in catalog order.
func (l *Ledger) Items(_ context.Context) []domain.InventoryItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := make([]domain.InventoryItem, 0, len(l.order))
	for _, code := range l.order {
		snapshot = append(snapshot, *l.items[code])
	}
	return snapshot
}

// ReserveAndDecrement atomically checks and reduces on-hand stock.
// On any failure the ledger is untouched; on-hand never goes negative.
func (l *Ledger) ReserveAndDecrement(ctx context.Context, code string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity %d: %w", qty, domain.ErrInvalidQuantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[code]
	if !ok {
		return fmt.Errorf("item %q: %w", code, domain.ErrItemNotFound)
	}
	if item.OnHand < qty {
		return fmt.Errorf("item %q has %d on hand, wanted %d: %w",
			code, item.OnHand, qty, domain.ErrInsufficientStock)
	}

	item.OnHand -= qty

	l.logger.DebugContext(ctx, "decremented stock",
		slog.String("code", code),
		slog.Int("qty", qty),
		slog.Int("on_hand", item.OnHand))

	return nil
}

// Restock adds qty units back to an item's on-hand count.
func (l *Ledger) Restock(ctx context.Context, code string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity %d: %w", qty, domain.ErrInvalidQuantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[code]
	if !ok {
		return fmt.Errorf("item %q: %w", code, domain.ErrItemNotFound)
	}

	item.OnHand += qty

	l.logger.DebugContext(ctx, "restocked",
		slog.String("code", code),
		slog.Int("qty", qty),
		slog.Int("on_hand", item.OnHand))

	return nil
}

// BelowThreshold returns copies of items at or below their reorder threshold.
func (l *Ledger) BelowThreshold(_ context.Context) []domain.InventoryItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	var low []domain.InventoryItem
	for _, code := range l.order {
		if l.items[code].NeedsReplenishment() {
			low = append(low, *l.items[code])
		}
	}
	return low
}
