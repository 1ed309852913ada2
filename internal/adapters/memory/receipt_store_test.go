// internal/adapters/memory/receipt_store_test.go
package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailflow/pos-be/internal/adapters/memory"
	"github.com/retailflow/pos-be/internal/core/domain"
	"github.com/retailflow/pos-be/internal/core/ports"
	"github.com/retailflow/pos-be/test/helpers"
)

func commitReceipt(t *testing.T, store *memory.ReceiptStore, overrides ...func(*domain.Receipt)) *domain.Receipt {
	t.Helper()
	ctx := context.Background()

	id, err := store.NextID(ctx)
	require.NoError(t, err)

	receipt := helpers.CreateTestReceipt(overrides...)
	receipt.ID = id
	require.NoError(t, store.Commit(ctx, receipt))
	return receipt
}

func TestReceiptStore_NextID_StrictlyIncreasing(t *testing.T) {
	store := memory.NewReceiptStore()
	ctx := context.Background()

	first, err := store.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := store.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)
}

func TestReceiptStore_CommitAndFetch(t *testing.T) {
	store := memory.NewReceiptStore()
	ctx := context.Background()

	receipt := commitReceipt(t, store)

	fetched, err := store.Fetch(ctx, receipt.ID)
	require.NoError(t, err)
	helpers.CompareReceipts(t, receipt, fetched)

	// Fetch hands out copies; mutations must not reach the store.
	fetched.Lines[0].ReturnedQty = 99
	again, err := store.Fetch(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Lines[0].ReturnedQty)
}

func TestReceiptStore_Commit_RejectsDuplicateID(t *testing.T) {
	store := memory.NewReceiptStore()
	ctx := context.Background()

	receipt := commitReceipt(t, store)
	err := store.Commit(ctx, receipt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already committed")
}

func TestReceiptStore_Fetch_NotFound(t *testing.T) {
	store := memory.NewReceiptStore()
	_, err := store.Fetch(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrReceiptNotFound)
}

func TestReceiptStore_MarkLineReturned(t *testing.T) {
	ctx := context.Background()

	t.Run("partial then full", func(t *testing.T) {
		store := memory.NewReceiptStore()
		receipt := commitReceipt(t, store, func(r *domain.Receipt) {
			r.Lines[0].Quantity = 3
			r.Total = r.Lines[0].UnitPrice.Mul(decimal.NewFromInt(3))
			r.CashTendered = r.Total
			r.Change = r.CashTendered.Sub(r.Total)
		})

		require.NoError(t, store.MarkLineReturned(ctx, receipt.ID, 0, 1))
		fetched, err := store.Fetch(ctx, receipt.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, fetched.Lines[0].ReturnedQty)
		assert.False(t, fetched.Lines[0].Returned)

		require.NoError(t, store.MarkLineReturned(ctx, receipt.ID, 0, 2))
		fetched, err = store.Fetch(ctx, receipt.ID)
		require.NoError(t, err)
		assert.True(t, fetched.Lines[0].Returned)
	})

	t.Run("flagged line rejects another return", func(t *testing.T) {
		store := memory.NewReceiptStore()
		receipt := commitReceipt(t, store)

		require.NoError(t, store.MarkLineReturned(ctx, receipt.ID, 0, 1))
		err := store.MarkLineReturned(ctx, receipt.ID, 0, 1)
		assert.ErrorIs(t, err, domain.ErrLineAlreadyReturned)
	})

	t.Run("over-return", func(t *testing.T) {
		store := memory.NewReceiptStore()
		receipt := commitReceipt(t, store)

		err := store.MarkLineReturned(ctx, receipt.ID, 0, 2)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	})

	t.Run("cancelled receipt", func(t *testing.T) {
		store := memory.NewReceiptStore()
		receipt := commitReceipt(t, store)
		require.NoError(t, store.MarkCancelled(ctx, receipt.ID))

		err := store.MarkLineReturned(ctx, receipt.ID, 0, 1)
		assert.ErrorIs(t, err, domain.ErrReceiptAlreadyCancelled)
	})

	t.Run("missing receipt or line", func(t *testing.T) {
		store := memory.NewReceiptStore()
		receipt := commitReceipt(t, store)

		assert.ErrorIs(t, store.MarkLineReturned(ctx, 42, 0, 1), domain.ErrReceiptNotFound)
		assert.ErrorIs(t, store.MarkLineReturned(ctx, receipt.ID, 7, 1), domain.ErrReceiptNotFound)
		assert.ErrorIs(t, store.MarkLineReturned(ctx, receipt.ID, 0, 0), domain.ErrInvalidQuantity)
	})
}

func TestReceiptStore_MarkCancelled(t *testing.T) {
	ctx := context.Background()

	t.Run("completed receipt cancels once", func(t *testing.T) {
		store := memory.NewReceiptStore()
		receipt := commitReceipt(t, store)

		require.NoError(t, store.MarkCancelled(ctx, receipt.ID))
		fetched, err := store.Fetch(ctx, receipt.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReceiptCancelled, fetched.Status)
		require.NotNil(t, fetched.CancelledAt)

		err = store.MarkCancelled(ctx, receipt.ID)
		assert.ErrorIs(t, err, domain.ErrReceiptAlreadyCancelled)
	})

	t.Run("blocked after a line return", func(t *testing.T) {
		store := memory.NewReceiptStore()
		receipt := commitReceipt(t, store)

		require.NoError(t, store.MarkLineReturned(ctx, receipt.ID, 0, 1))
		err := store.MarkCancelled(ctx, receipt.ID)
		assert.ErrorIs(t, err, domain.ErrReturnConflict)
	})

	t.Run("missing receipt", func(t *testing.T) {
		store := memory.NewReceiptStore()
		assert.ErrorIs(t, store.MarkCancelled(ctx, 42), domain.ErrReceiptNotFound)
	})
}

func TestReceiptStore_List(t *testing.T) {
	ctx := context.Background()
	store := memory.NewReceiptStore()

	for i := 0; i < 5; i++ {
		cashier := "cashier1"
		if i%2 == 1 {
			cashier = "cashier2"
		}
		commitReceipt(t, store, func(r *domain.Receipt) {
			r.Cashier = cashier
		})
	}
	require.NoError(t, store.MarkCancelled(ctx, 3))

	t.Run("ascending by default", func(t *testing.T) {
		result, err := store.List(ctx, ports.ReceiptListParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(5), result.TotalCount)
		require.Len(t, result.Receipts, 5)
		assert.Equal(t, int64(1), result.Receipts[0].ID)
		assert.Equal(t, int64(5), result.Receipts[4].ID)
	})

	t.Run("descending", func(t *testing.T) {
		result, err := store.List(ctx, ports.ReceiptListParams{SortOrder: "desc"})
		require.NoError(t, err)
		assert.Equal(t, int64(5), result.Receipts[0].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		result, err := store.List(ctx, ports.ReceiptListParams{Status: "cancelled"})
		require.NoError(t, err)
		require.Len(t, result.Receipts, 1)
		assert.Equal(t, int64(3), result.Receipts[0].ID)
	})

	t.Run("cashier filter", func(t *testing.T) {
		result, err := store.List(ctx, ports.ReceiptListParams{Cashier: "cashier2"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.TotalCount)
	})

	t.Run("pagination", func(t *testing.T) {
		result, err := store.List(ctx, ports.ReceiptListParams{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(5), result.TotalCount)
		require.Len(t, result.Receipts, 2)
		assert.Equal(t, int64(3), result.Receipts[0].ID)
	})

	t.Run("time window", func(t *testing.T) {
		future := time.Now().Add(time.Hour)
		result, err := store.List(ctx, ports.ReceiptListParams{From: &future})
		require.NoError(t, err)
		assert.Zero(t, result.TotalCount)
	})
}
