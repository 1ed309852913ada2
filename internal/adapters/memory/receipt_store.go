// internal/adapters/memory/receipt_store.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/retailflow/pos-be/internal/core/domain"
	"github.com/retailflow/pos-be/internal/core/ports"
)

// ReceiptStore is an in-memory ports.ReceiptRepository. It backs unit tests
// and the offline demo; semantics mirror the postgres adapter, durability
// obviously excepted.
type ReceiptStore struct {
	mu       sync.Mutex
	nextID   int64
	receipts map[int64]*domain.Receipt
}

var _ ports.ReceiptRepository = (*ReceiptStore)(nil)

// NewReceiptStore creates an empty in-memory receipt store
func NewReceiptStore() *ReceiptStore {
	return &ReceiptStore{
		receipts: make(map[int64]*domain.Receipt),
	}
}

// NextID issues the next receipt number, starting from 1.
func (s *ReceiptStore) NextID(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID, nil
}

// Commit stores a deep copy of the receipt.
func (s *ReceiptStore) Commit(_ context.Context, receipt *domain.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.receipts[receipt.ID]; exists {
		return fmt.Errorf("receipt %d already committed", receipt.ID)
	}

	s.receipts[receipt.ID] = cloneReceipt(receipt)
	return nil
}

// Fetch returns a deep copy of the stored receipt.
func (s *ReceiptStore) Fetch(_ context.Context, id int64) (*domain.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	receipt, ok := s.receipts[id]
	if !ok {
		return nil, fmt.Errorf("receipt %d: %w", id, domain.ErrReceiptNotFound)
	}
	return cloneReceipt(receipt), nil
}

// MarkLineReturned accumulates returned quantity on a line, flagging it
// once the full original quantity is back.
func (s *ReceiptStore) MarkLineReturned(_ context.Context, id int64, lineIndex int, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity %d: %w", qty, domain.ErrInvalidQuantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	receipt, ok := s.receipts[id]
	if !ok {
		return fmt.Errorf("receipt %d: %w", id, domain.ErrReceiptNotFound)
	}
	if receipt.Status == domain.ReceiptCancelled {
		return fmt.Errorf("receipt %d: %w", id, domain.ErrReceiptAlreadyCancelled)
	}
	if lineIndex < 0 || lineIndex >= len(receipt.Lines) {
		return fmt.Errorf("line %d of receipt %d: %w", lineIndex, id, domain.ErrReceiptNotFound)
	}

	line := &receipt.Lines[lineIndex]
	if line.Returned {
		return fmt.Errorf("line %d of receipt %d: %w", lineIndex, id, domain.ErrLineAlreadyReturned)
	}
	if qty > line.RemainingQty() {
		return fmt.Errorf("return of %d exceeds remaining %d: %w",
			qty, line.RemainingQty(), domain.ErrInvalidQuantity)
	}

	line.ReturnedQty += qty
	if line.ReturnedQty >= line.Quantity {
		line.Returned = true
	}
	return nil
}

// MarkCancelled voids a completed receipt with no individually returned lines.
func (s *ReceiptStore) MarkCancelled(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	receipt, ok := s.receipts[id]
	if !ok {
		return fmt.Errorf("receipt %d: %w", id, domain.ErrReceiptNotFound)
	}
	if receipt.Status == domain.ReceiptCancelled {
		return fmt.Errorf("receipt %d: %w", id, domain.ErrReceiptAlreadyCancelled)
	}
	for i := range receipt.Lines {
		if receipt.Lines[i].ReturnedQty > 0 {
			return fmt.Errorf("receipt %d: %w", id, domain.ErrReturnConflict)
		}
	}

	now := time.Now()
	receipt.Status = domain.ReceiptCancelled
	receipt.CancelledAt = &now
	return nil
}

// List returns a filtered page of receipts ordered by number.
func (s *ReceiptStore) List(_ context.Context, params ports.ReceiptListParams) (*ports.ReceiptListResult, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 50
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*domain.Receipt
	for _, receipt := range s.receipts {
		if params.Status != "" && string(receipt.Status) != params.Status {
			continue
		}
		if params.Cashier != "" && receipt.Cashier != params.Cashier {
			continue
		}
		if params.From != nil && receipt.CreatedAt.Before(*params.From) {
			continue
		}
		if params.To != nil && !receipt.CreatedAt.Before(*params.To) {
			continue
		}
		matched = append(matched, receipt)
	}

	sort.Slice(matched, func(i, j int) bool {
		if params.SortOrder == "desc" {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].ID < matched[j].ID
	})

	totalCount := int64(len(matched))
	start := (params.Page - 1) * params.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]*domain.Receipt, 0, end-start)
	for _, receipt := range matched[start:end] {
		page = append(page, cloneReceipt(receipt))
	}

	return &ports.ReceiptListResult{
		Receipts:   page,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
	}, nil
}

func cloneReceipt(receipt *domain.Receipt) *domain.Receipt {
	cp := *receipt
	cp.Lines = make([]domain.LineItem, len(receipt.Lines))
	copy(cp.Lines, receipt.Lines)
	if receipt.CancelledAt != nil {
		t := *receipt.CancelledAt
		cp.CancelledAt = &t
	}
	return &cp
}
