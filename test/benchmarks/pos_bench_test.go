// test/benchmarks/pos_bench_test.go
package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/retailflow/pos-be/internal/adapters/memory"
	"github.com/retailflow/pos-be/internal/core/domain"
	"github.com/retailflow/pos-be/internal/core/ports"
	"github.com/retailflow/pos-be/internal/core/services"
	"github.com/retailflow/pos-be/test/helpers"
)

func BenchmarkLedgerOperations(b *testing.B) {
	ctx := context.Background()

	b.Run("Lookup", func(b *testing.B) {
		ledger := newBenchmarkLedger(b, 1000)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = ledger.Lookup(ctx, fmt.Sprintf("BENCH-%04d", i%1000))
		}
	})

	b.Run("ReserveAndDecrement", func(b *testing.B) {
		ledger := newBenchmarkLedger(b, 1000)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = ledger.ReserveAndDecrement(ctx, fmt.Sprintf("BENCH-%04d", i%1000), 1)
		}
	})

	b.Run("BelowThreshold", func(b *testing.B) {
		ledger := newBenchmarkLedger(b, 1000)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = ledger.BelowThreshold(ctx)
		}
	})
}

func BenchmarkSaleSettlement(b *testing.B) {
	ctx := context.Background()
	ledger := newBenchmarkLedger(b, 100)
	store := memory.NewReceiptStore()
	engine := services.NewEngine(ledger, store, nil, nil, helpers.TestLogger())

	tendered := decimal.NewFromFloat(1000.00)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = engine.AddItem(ctx, fmt.Sprintf("BENCH-%04d", i%100), 1)
		_ = engine.AddItem(ctx, fmt.Sprintf("BENCH-%04d", (i+1)%100), 2)
		_, _ = engine.Settle(ctx, tendered)
	}
}

func BenchmarkReceiptStoreList(b *testing.B) {
	ctx := context.Background()
	store := memory.NewReceiptStore()

	for i := 0; i < 500; i++ {
		id, _ := store.NextID(ctx)
		receipt := helpers.CreateTestReceipt(func(r *domain.Receipt) {
			r.ID = id
		})
		_ = store.Commit(ctx, receipt)
	}

	params := ports.ReceiptListParams{Page: 1, PageSize: 50, SortOrder: "desc"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.List(ctx, params)
	}
}

// Memory allocation benchmarks
func BenchmarkMemoryAllocation(b *testing.B) {
	b.Run("Receipt", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = helpers.CreateTestReceipt()
		}
	})

	b.Run("LineSubtotal", func(b *testing.B) {
		line := domain.LineItem{
			UnitPrice: decimal.NewFromFloat(2.55),
			Quantity:  3,
		}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = line.Subtotal()
		}
	})
}
