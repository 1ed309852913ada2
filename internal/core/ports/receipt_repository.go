// internal/core/ports/receipt_repository.go
package ports

import (
	"context"
	"time"

	"github.com/retailflow/pos-be/internal/core/domain"
)

// ReceiptRepository defines the durable receipt store port.
// Implemented by the postgres adapter and an in-memory adapter for tests.
type ReceiptRepository interface {
	// NextID issues a fresh receipt number. Numbers are strictly increasing
	// from 1 and never reused, even across process restarts.
	NextID(ctx context.Context) (int64, error)
	// Commit persists the receipt header and all lines atomically.
	Commit(ctx context.Context, receipt *domain.Receipt) error
	Fetch(ctx context.Context, id int64) (*domain.Receipt, error)
	// MarkLineReturned records qty units of the line as returned. The line's
	// returned flag flips only once the full original quantity is back.
	MarkLineReturned(ctx context.Context, id int64, lineIndex int, qty int) error
	// MarkCancelled transitions a completed receipt to cancelled. Fails once
	// any line has been individually returned.
	MarkCancelled(ctx context.Context, id int64) error
	List(ctx context.Context, params ReceiptListParams) (*ReceiptListResult, error)
}

// ReceiptListParams holds filters for listing receipts
type ReceiptListParams struct {
	Status    string
	Cashier   string
	From      *time.Time
	To        *time.Time
	SortOrder string
	Page      int
	PageSize  int
}

// ReceiptListResult holds a page of receipts
type ReceiptListResult struct {
	Receipts   []*domain.Receipt `json:"receipts"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int64             `json:"total_count"`
}
