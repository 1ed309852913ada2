// internal/core/services/engine_test.go
package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/retailflow/pos-be/internal/adapters/memory"
	"github.com/retailflow/pos-be/internal/core/domain"
	"github.com/retailflow/pos-be/internal/core/services"
	"github.com/retailflow/pos-be/test/helpers"
	"github.com/retailflow/pos-be/test/mocks"
)

func newTestEngine(t *testing.T) (*services.Engine, *services.Ledger, *memory.ReceiptStore) {
	t.Helper()
	ledger := newTestLedger(t)
	store := memory.NewReceiptStore()
	engine := services.NewEngine(ledger, store, nil, nil, helpers.TestLogger())
	return engine, ledger, store
}

func onHand(t *testing.T, ledger *services.Ledger, code string) int {
	t.Helper()
	item, err := ledger.Lookup(context.Background(), code)
	require.NoError(t, err)
	return item.OnHand
}

func TestEngine_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("stages without decrementing stock", func(t *testing.T) {
		engine, ledger, _ := newTestEngine(t)

		require.NoError(t, engine.AddItem(ctx, "72800B", 1))
		assert.Equal(t, 2, onHand(t, ledger, "72800B"))

		lines := engine.Pending()
		require.Len(t, lines, 1)
		assert.Equal(t, "4 PURPLE FLOCK DINNER CANDLES", lines[0].ItemName)
		assert.True(t, lines[0].UnitPrice.Equal(decimal.NewFromFloat(2.55)))
	})

	t.Run("merges repeated codes into one line", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)

		require.NoError(t, engine.AddItem(ctx, "21730", 2))
		require.NoError(t, engine.AddItem(ctx, "21730", 3))

		lines := engine.Pending()
		require.Len(t, lines, 1)
		assert.Equal(t, 5, lines[0].Quantity)
	})

	t.Run("rejects more than live stock across merged lines", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)

		require.NoError(t, engine.AddItem(ctx, "72800B", 2))
		err := engine.AddItem(ctx, "72800B", 1)
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)

		// The failed add must not grow the staged line.
		lines := engine.Pending()
		require.Len(t, lines, 1)
		assert.Equal(t, 2, lines[0].Quantity)
	})

	t.Run("oversell in one add", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		assert.ErrorIs(t, engine.AddItem(ctx, "72800B", 5), domain.ErrInsufficientStock)
		assert.Empty(t, engine.Pending())
	})

	t.Run("unknown item", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		assert.ErrorIs(t, engine.AddItem(ctx, "NOPE", 1), domain.ErrItemNotFound)
	})

	t.Run("invalid quantity", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		assert.ErrorIs(t, engine.AddItem(ctx, "72800B", 0), domain.ErrInvalidQuantity)
	})
}

func TestEngine_RemoveItem(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t)

	require.NoError(t, engine.AddItem(ctx, "72800B", 1))
	require.NoError(t, engine.AddItem(ctx, "21730", 2))

	require.NoError(t, engine.RemoveItem(ctx, "72800B"))
	lines := engine.Pending()
	require.Len(t, lines, 1)
	assert.Equal(t, "21730", lines[0].ItemCode)

	assert.ErrorIs(t, engine.RemoveItem(ctx, "72800B"), domain.ErrItemNotFound)
}

func TestEngine_Settle(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		engine, ledger, _ := newTestEngine(t)
		engine.SetCashier("cashier1")

		require.NoError(t, engine.AddItem(ctx, "72800B", 1))
		receipt, err := engine.Settle(ctx, decimal.NewFromFloat(3.55))
		require.NoError(t, err)

		assert.Equal(t, int64(1), receipt.ID)
		assert.True(t, receipt.Total.Equal(decimal.NewFromFloat(2.55)))
		assert.True(t, receipt.Change.Equal(decimal.NewFromFloat(1.00)))
		assert.Equal(t, domain.ReceiptCompleted, receipt.Status)
		assert.Equal(t, "cashier1", receipt.Cashier)

		assert.Equal(t, 1, onHand(t, ledger, "72800B"))
		assert.Empty(t, engine.Pending())
	})

	t.Run("receipt numbers increase across sales", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)

		require.NoError(t, engine.AddItem(ctx, "21730", 1))
		first, err := engine.Settle(ctx, decimal.NewFromFloat(5.00))
		require.NoError(t, err)

		require.NoError(t, engine.AddItem(ctx, "21730", 1))
		second, err := engine.Settle(ctx, decimal.NewFromFloat(5.00))
		require.NoError(t, err)

		assert.Equal(t, first.ID+1, second.ID)
	})

	t.Run("empty sale", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		_, err := engine.Settle(ctx, decimal.NewFromFloat(10.00))
		assert.ErrorIs(t, err, domain.ErrEmptySale)
	})

	t.Run("insufficient payment keeps sale open and stock untouched", func(t *testing.T) {
		engine, ledger, _ := newTestEngine(t)

		require.NoError(t, engine.AddItem(ctx, "72800B", 1))
		_, err := engine.Settle(ctx, decimal.NewFromFloat(1.00))
		assert.ErrorIs(t, err, domain.ErrInsufficientPayment)

		assert.Equal(t, 2, onHand(t, ledger, "72800B"))
		assert.Len(t, engine.Pending(), 1)
	})

	t.Run("exact tender yields zero change", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)

		require.NoError(t, engine.AddItem(ctx, "72800B", 2))
		receipt, err := engine.Settle(ctx, decimal.NewFromFloat(5.10))
		require.NoError(t, err)
		assert.True(t, receipt.Change.IsZero())
	})
}

func TestEngine_Settle_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("mid-sale decrement failure restocks earlier lines", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := mocks.NewMockLedger(ctrl)
		store := memory.NewReceiptStore()
		engine := services.NewEngine(ledger, store, nil, nil, helpers.TestLogger())

		candle := helpers.CreateTestItem()
		holder := helpers.CreateTestItem(func(i *domain.InventoryItem) {
			i.Code = "21730"
			i.OnHand = 18
		})

		ledger.EXPECT().Lookup(gomock.Any(), "72800B").Return(candle, nil)
		ledger.EXPECT().Lookup(gomock.Any(), "21730").Return(holder, nil)
		require.NoError(t, engine.AddItem(ctx, "72800B", 1))
		require.NoError(t, engine.AddItem(ctx, "21730", 1))

		ledger.EXPECT().ReserveAndDecrement(gomock.Any(), "72800B", 1).Return(nil)
		ledger.EXPECT().ReserveAndDecrement(gomock.Any(), "21730", 1).
			Return(domain.ErrInsufficientStock)
		// Only the line that actually decremented comes back.
		ledger.EXPECT().Restock(gomock.Any(), "72800B", 1).Return(nil)

		_, err := engine.Settle(ctx, decimal.NewFromFloat(100.00))
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		assert.Len(t, engine.Pending(), 2)
	})

	t.Run("commit failure restocks every line", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := mocks.NewMockLedger(ctrl)
		receipts := mocks.NewMockReceiptRepository(ctrl)
		engine := services.NewEngine(ledger, receipts, nil, nil, helpers.TestLogger())

		candle := helpers.CreateTestItem()
		ledger.EXPECT().Lookup(gomock.Any(), "72800B").Return(candle, nil)
		require.NoError(t, engine.AddItem(ctx, "72800B", 1))

		commitErr := errors.New("disk full")
		ledger.EXPECT().ReserveAndDecrement(gomock.Any(), "72800B", 1).Return(nil)
		receipts.EXPECT().NextID(gomock.Any()).Return(int64(1), nil)
		receipts.EXPECT().Commit(gomock.Any(), gomock.Any()).Return(commitErr)
		ledger.EXPECT().Restock(gomock.Any(), "72800B", 1).Return(nil)

		_, err := engine.Settle(ctx, decimal.NewFromFloat(3.55))
		require.Error(t, err)
		assert.ErrorIs(t, err, commitErr)
		assert.Len(t, engine.Pending(), 1)
	})

	t.Run("id allocation failure restocks every line", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := mocks.NewMockLedger(ctrl)
		receipts := mocks.NewMockReceiptRepository(ctrl)
		engine := services.NewEngine(ledger, receipts, nil, nil, helpers.TestLogger())

		candle := helpers.CreateTestItem()
		ledger.EXPECT().Lookup(gomock.Any(), "72800B").Return(candle, nil)
		require.NoError(t, engine.AddItem(ctx, "72800B", 1))

		ledger.EXPECT().ReserveAndDecrement(gomock.Any(), "72800B", 1).Return(nil)
		receipts.EXPECT().NextID(gomock.Any()).Return(int64(0), errors.New("sequence gone"))
		ledger.EXPECT().Restock(gomock.Any(), "72800B", 1).Return(nil)

		_, err := engine.Settle(ctx, decimal.NewFromFloat(3.55))
		require.Error(t, err)
	})
}

func TestEngine_Settle_EnqueuesReplenishment(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	tasks := mocks.NewMockTaskEnqueuer(ctrl)

	ledger := newTestLedger(t)
	store := memory.NewReceiptStore()
	engine := services.NewEngine(ledger, store, nil, tasks, helpers.TestLogger())

	// 72800B starts below its threshold, so settling any sale orders it.
	tasks.EXPECT().
		EnqueueContext(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)

	require.NoError(t, engine.AddItem(ctx, "72800B", 1))
	_, err := engine.Settle(ctx, decimal.NewFromFloat(3.55))
	require.NoError(t, err)
}

func TestEngine_CancelReceipt(t *testing.T) {
	ctx := context.Background()

	settle := func(t *testing.T, engine *services.Engine, code string, qty int) *domain.Receipt {
		t.Helper()
		require.NoError(t, engine.AddItem(ctx, code, qty))
		receipt, err := engine.Settle(ctx, decimal.NewFromFloat(100.00))
		require.NoError(t, err)
		return receipt
	}

	t.Run("restocks all lines", func(t *testing.T) {
		engine, ledger, _ := newTestEngine(t)
		receipt := settle(t, engine, "72800B", 2)
		assert.Equal(t, 0, onHand(t, ledger, "72800B"))

		cancelled, err := engine.CancelReceipt(ctx, receipt.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReceiptCancelled, cancelled.Status)
		assert.NotNil(t, cancelled.CancelledAt)
		assert.Equal(t, 2, onHand(t, ledger, "72800B"))
	})

	t.Run("repeat cancel fails without double restock", func(t *testing.T) {
		engine, ledger, _ := newTestEngine(t)
		receipt := settle(t, engine, "72800B", 2)

		_, err := engine.CancelReceipt(ctx, receipt.ID)
		require.NoError(t, err)

		_, err = engine.CancelReceipt(ctx, receipt.ID)
		assert.ErrorIs(t, err, domain.ErrReceiptAlreadyCancelled)
		assert.Equal(t, 2, onHand(t, ledger, "72800B"))
	})

	t.Run("unknown receipt", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		_, err := engine.CancelReceipt(ctx, 42)
		assert.ErrorIs(t, err, domain.ErrReceiptNotFound)
	})

	t.Run("cancel blocked once a line was returned", func(t *testing.T) {
		engine, ledger, _ := newTestEngine(t)
		receipt := settle(t, engine, "72800B", 2)

		require.NoError(t, engine.ReturnLine(ctx, receipt.ID, 0, 1))
		_, err := engine.CancelReceipt(ctx, receipt.ID)
		assert.ErrorIs(t, err, domain.ErrReturnConflict)

		// Only the explicit return came back.
		assert.Equal(t, 1, onHand(t, ledger, "72800B"))
	})
}

func TestEngine_ReturnLine(t *testing.T) {
	ctx := context.Background()

	settle := func(t *testing.T, engine *services.Engine, code string, qty int) *domain.Receipt {
		t.Helper()
		require.NoError(t, engine.AddItem(ctx, code, qty))
		receipt, err := engine.Settle(ctx, decimal.NewFromFloat(100.00))
		require.NoError(t, err)
		return receipt
	}

	t.Run("full return restocks and flags the line", func(t *testing.T) {
		engine, ledger, _ := newTestEngine(t)
		receipt := settle(t, engine, "72800B", 1)
		assert.Equal(t, 1, onHand(t, ledger, "72800B"))

		require.NoError(t, engine.ReturnLine(ctx, receipt.ID, 0, 1))
		assert.Equal(t, 2, onHand(t, ledger, "72800B"))

		fetched, err := engine.Receipt(ctx, receipt.ID)
		require.NoError(t, err)
		assert.True(t, fetched.Lines[0].Returned)
		assert.Equal(t, 1, fetched.Lines[0].ReturnedQty)
	})

	t.Run("second return of a flagged line fails", func(t *testing.T) {
		engine, ledger, _ := newTestEngine(t)
		receipt := settle(t, engine, "72800B", 1)

		require.NoError(t, engine.ReturnLine(ctx, receipt.ID, 0, 1))
		err := engine.ReturnLine(ctx, receipt.ID, 0, 1)
		assert.ErrorIs(t, err, domain.ErrLineAlreadyReturned)
		assert.Equal(t, 2, onHand(t, ledger, "72800B"))
	})

	t.Run("partial returns accumulate to the flag", func(t *testing.T) {
		engine, ledger, _ := newTestEngine(t)
		receipt := settle(t, engine, "21730", 3)

		require.NoError(t, engine.ReturnLine(ctx, receipt.ID, 0, 1))
		fetched, err := engine.Receipt(ctx, receipt.ID)
		require.NoError(t, err)
		assert.False(t, fetched.Lines[0].Returned)
		assert.Equal(t, 1, fetched.Lines[0].ReturnedQty)

		require.NoError(t, engine.ReturnLine(ctx, receipt.ID, 0, 2))
		fetched, err = engine.Receipt(ctx, receipt.ID)
		require.NoError(t, err)
		assert.True(t, fetched.Lines[0].Returned)
		assert.Equal(t, 18, onHand(t, ledger, "21730"))
	})

	t.Run("return beyond remaining quantity", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		receipt := settle(t, engine, "21730", 2)

		err := engine.ReturnLine(ctx, receipt.ID, 0, 3)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	})

	t.Run("return on a cancelled receipt", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		receipt := settle(t, engine, "72800B", 1)

		_, err := engine.CancelReceipt(ctx, receipt.ID)
		require.NoError(t, err)

		err = engine.ReturnLine(ctx, receipt.ID, 0, 1)
		assert.ErrorIs(t, err, domain.ErrReceiptAlreadyCancelled)
	})

	t.Run("bad line index", func(t *testing.T) {
		engine, _, _ := newTestEngine(t)
		receipt := settle(t, engine, "72800B", 1)

		assert.ErrorIs(t, engine.ReturnLine(ctx, receipt.ID, 5, 1), domain.ErrReceiptNotFound)
		assert.ErrorIs(t, engine.ReturnLine(ctx, receipt.ID, 0, 0), domain.ErrInvalidQuantity)
	})
}

func TestEngine_AbortSale(t *testing.T) {
	ctx := context.Background()
	engine, ledger, _ := newTestEngine(t)

	require.NoError(t, engine.AddItem(ctx, "72800B", 2))
	engine.AbortSale()

	assert.Empty(t, engine.Pending())
	assert.Equal(t, 2, onHand(t, ledger, "72800B"))
}
