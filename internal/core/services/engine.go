// internal/core/services/engine.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/retailflow/pos-be/internal/core/domain"
	"github.com/retailflow/pos-be/internal/core/ports"
	"github.com/retailflow/pos-be/internal/workers"
)

const receiptCacheTTL = 15 * time.Minute

// Engine drives the till: it accumulates one pending sale at a time,
// settles it against the ledger and receipt store, and processes
// cancellations and line returns on committed receipts.
//
// cache and tasks may be nil; the engine then skips read caching and
// replenishment enqueueing.
type Engine struct {
	mu       sync.Mutex
	ledger   ports.Ledger
	receipts ports.ReceiptRepository
	cache    ports.CacheRepository
	tasks    ports.TaskEnqueuer
	logger   *slog.Logger

	cashier string
	pending []domain.LineItem
}

// NewEngine creates a transaction engine
func NewEngine(ledger ports.Ledger, receipts ports.ReceiptRepository, cache ports.CacheRepository, tasks ports.TaskEnqueuer, logger *slog.Logger) *Engine {
	return &Engine{
		ledger:   ledger,
		receipts: receipts,
		cache:    cache,
		tasks:    tasks,
		logger:   logger.With(slog.String("service", "engine")),
	}
}

// SetCashier records who is operating the till; stamped onto receipts.
func (e *Engine) SetCashier(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cashier = name
}

// AddItem stages qty units of an item on the pending sale. Stock is
// validated against live on-hand but not decremented until settle, and the
// unit price is snapshotted now. Repeats of the same code merge into one line.
func (e *Engine) AddItem(ctx context.Context, code string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity %d: %w", qty, domain.ErrInvalidQuantity)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	item, err := e.ledger.Lookup(ctx, code)
	if err != nil {
		return err
	}

	staged := qty
	idx := e.pendingIndex(code)
	if idx >= 0 {
		staged += e.pending[idx].Quantity
	}
	if item.OnHand < staged {
		return fmt.Errorf("item %q has %d on hand, sale wants %d: %w",
			code, item.OnHand, staged, domain.ErrInsufficientStock)
	}

	if idx >= 0 {
		e.pending[idx].Quantity = staged
	} else {
		e.pending = append(e.pending, domain.LineItem{
			ItemCode:  item.Code,
			ItemName:  item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  qty,
		})
	}

	e.logger.InfoContext(ctx, "item added to sale",
		slog.String("code", code),
		slog.Int("qty", qty),
		slog.Int("staged", staged))

	return nil
}

// RemoveItem drops an item's pending line from the sale entirely.
func (e *Engine) RemoveItem(ctx context.Context, code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.pendingIndex(code)
	if idx < 0 {
		return fmt.Errorf("item %q is not on the sale: %w", code, domain.ErrItemNotFound)
	}

	e.pending = append(e.pending[:idx], e.pending[idx+1:]...)

	e.logger.InfoContext(ctx, "item removed from sale", slog.String("code", code))
	return nil
}

// Pending returns a copy of the staged sale lines in entry order.
func (e *Engine) Pending() []domain.LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	lines := make([]domain.LineItem, len(e.pending))
	copy(lines, e.pending)
	return lines
}

// PendingTotal is the running total of the staged sale.
func (e *Engine) PendingTotal() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pendingTotalLocked()
}

// AbortSale discards the staged sale without touching stock.
func (e *Engine) AbortSale() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = nil
}

// Settle closes the pending sale: verifies payment, decrements every line
// all-or-nothing, commits a durable receipt and returns it. On any failure
// the sale stays open and stock is exactly as it was.
func (e *Engine) Settle(ctx context.Context, cashTendered decimal.Decimal) (*domain.Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.pending) == 0 {
		return nil, domain.ErrEmptySale
	}

	total := e.pendingTotalLocked()
	if cashTendered.LessThan(total) {
		return nil, fmt.Errorf("tendered %s against total %s: %w",
			cashTendered, total, domain.ErrInsufficientPayment)
	}

	var applied []domain.LineItem
	for _, line := range e.pending {
		if err := e.ledger.ReserveAndDecrement(ctx, line.ItemCode, line.Quantity); err != nil {
			e.rollbackDecrements(ctx, applied)
			return nil, fmt.Errorf("settling line %q: %w", line.ItemCode, err)
		}
		applied = append(applied, line)
	}

	id, err := e.receipts.NextID(ctx)
	if err != nil {
		e.rollbackDecrements(ctx, applied)
		return nil, fmt.Errorf("allocating receipt number: %w", err)
	}

	lines := make([]domain.LineItem, len(e.pending))
	copy(lines, e.pending)

	receipt := &domain.Receipt{
		ID:           id,
		Lines:        lines,
		Total:        total,
		CashTendered: cashTendered,
		Change:       cashTendered.Sub(total),
		Cashier:      e.cashier,
	}
	receipt.PrepareForStorage()

	if err := receipt.Validate(); err != nil {
		e.rollbackDecrements(ctx, applied)
		return nil, fmt.Errorf("receipt validation failed: %w", err)
	}

	if err := e.receipts.Commit(ctx, receipt); err != nil {
		e.rollbackDecrements(ctx, applied)
		return nil, fmt.Errorf("committing receipt %d: %w", id, err)
	}

	e.pending = nil

	e.logger.InfoContext(ctx, "sale settled",
		slog.Int64("receipt_no", receipt.ID),
		slog.String("total", receipt.Total.String()),
		slog.String("change", receipt.Change.String()),
		slog.Int("lines", len(receipt.Lines)))

	e.enqueueReplenishment(ctx)

	return receipt, nil
}

// Receipt fetches a committed receipt, through the cache when one is wired.
func (e *Engine) Receipt(ctx context.Context, id int64) (*domain.Receipt, error) {
	if e.cache == nil {
		return e.receipts.Fetch(ctx, id)
	}

	var receipt domain.Receipt
	err := e.cache.GetOrSet(ctx, receiptCacheKey(id), &receipt, func() (interface{}, error) {
		return e.receipts.Fetch(ctx, id)
	}, receiptCacheTTL)
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// CancelReceipt voids an entire receipt and restocks every line's unreturned
// remainder. Legal only while the receipt is completed and no line has been
// individually returned; a repeat cancel fails without touching stock.
func (e *Engine) CancelReceipt(ctx context.Context, id int64) (*domain.Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	receipt, err := e.receipts.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	// The store validates atomically; only after it flips the status do we
	// touch stock, so a rejected cancel can never double-restock.
	if err := e.receipts.MarkCancelled(ctx, id); err != nil {
		return nil, err
	}

	for i := range receipt.Lines {
		remaining := receipt.Lines[i].RemainingQty()
		if remaining <= 0 {
			continue
		}
		if err := e.ledger.Restock(ctx, receipt.Lines[i].ItemCode, remaining); err != nil {
			e.logger.ErrorContext(ctx, "restock failed during cancel",
				slog.Int64("receipt_no", id),
				slog.String("code", receipt.Lines[i].ItemCode),
				slog.String("error", err.Error()))
		}
	}

	e.invalidateReceipt(ctx, id)

	e.logger.InfoContext(ctx, "receipt cancelled", slog.Int64("receipt_no", id))

	return e.receipts.Fetch(ctx, id)
}

// ReturnLine takes back qty units of a single receipt line and restocks them.
// Partial quantities are allowed; the line is flagged returned once the full
// original quantity is back, and a flagged line rejects further returns.
func (e *Engine) ReturnLine(ctx context.Context, id int64, lineIndex int, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity %d: %w", qty, domain.ErrInvalidQuantity)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	receipt, err := e.receipts.Fetch(ctx, id)
	if err != nil {
		return err
	}
	if lineIndex < 0 || lineIndex >= len(receipt.Lines) {
		return fmt.Errorf("line %d of receipt %d: %w", lineIndex, id, domain.ErrReceiptNotFound)
	}

	if err := e.receipts.MarkLineReturned(ctx, id, lineIndex, qty); err != nil {
		return err
	}

	code := receipt.Lines[lineIndex].ItemCode
	if err := e.ledger.Restock(ctx, code, qty); err != nil {
		e.logger.ErrorContext(ctx, "restock failed during return",
			slog.Int64("receipt_no", id),
			slog.String("code", code),
			slog.String("error", err.Error()))
	}

	e.invalidateReceipt(ctx, id)

	e.logger.InfoContext(ctx, "line returned",
		slog.Int64("receipt_no", id),
		slog.Int("line", lineIndex),
		slog.Int("qty", qty))

	return nil
}

// ListReceipts passes through to the store's filtered listing.
func (e *Engine) ListReceipts(ctx context.Context, params ports.ReceiptListParams) (*ports.ReceiptListResult, error) {
	return e.receipts.List(ctx, params)
}

func (e *Engine) pendingIndex(code string) int {
	for i := range e.pending {
		if e.pending[i].ItemCode == code {
			return i
		}
	}
	return -1
}

func (e *Engine) pendingTotalLocked() decimal.Decimal {
	total := decimal.Zero
	for i := range e.pending {
		total = total.Add(e.pending[i].Subtotal())
	}
	return total
}

// rollbackDecrements restores stock taken earlier in a failed settle.
func (e *Engine) rollbackDecrements(ctx context.Context, applied []domain.LineItem) {
	for _, line := range applied {
		if err := e.ledger.Restock(ctx, line.ItemCode, line.Quantity); err != nil {
			e.logger.ErrorContext(ctx, "rollback restock failed",
				slog.String("code", line.ItemCode),
				slog.Int("qty", line.Quantity),
				slog.String("error", err.Error()))
		}
	}
}

// enqueueReplenishment queues a reorder task for every item at or below its
// threshold. Queue trouble is logged and swallowed; the sale already settled.
func (e *Engine) enqueueReplenishment(ctx context.Context) {
	if e.tasks == nil {
		return
	}

	for _, item := range e.ledger.BelowThreshold(ctx) {
		task, err := workers.NewReplenishmentTask(workers.ReplenishmentPayload{
			JobID:    uuid.New().String(),
			ItemCode: item.Code,
			ItemName: item.Name,
			OnHand:   item.OnHand,
			OrderQty: item.ReplenishQty,
		})
		if err != nil {
			e.logger.ErrorContext(ctx, "replenishment task build failed",
				slog.String("code", item.Code),
				slog.String("error", err.Error()))
			continue
		}

		if _, err := e.tasks.EnqueueContext(ctx, task, asynq.Queue("default")); err != nil {
			e.logger.ErrorContext(ctx, "replenishment enqueue failed",
				slog.String("code", item.Code),
				slog.String("error", err.Error()))
			continue
		}

		e.logger.InfoContext(ctx, "replenishment order enqueued",
			slog.String("code", item.Code),
			slog.Int("on_hand", item.OnHand),
			slog.Int("order_qty", item.ReplenishQty))
	}
}

func (e *Engine) invalidateReceipt(ctx context.Context, id int64) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Delete(ctx, receiptCacheKey(id)); err != nil {
		e.logger.WarnContext(ctx, "receipt cache invalidation failed",
			slog.Int64("receipt_no", id),
			slog.String("error", err.Error()))
	}
}

func receiptCacheKey(id int64) string {
	return fmt.Sprintf("pos:receipt:%d", id)
}
