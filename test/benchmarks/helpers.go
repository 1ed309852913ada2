// test/benchmarks/helpers.go
package benchmarks

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/retailflow/pos-be/internal/core/domain"
	"github.com/retailflow/pos-be/internal/core/services"
	"github.com/retailflow/pos-be/test/helpers"
)

// createBenchmarkCatalog generates a catalog of n well-stocked items so
// settlement benchmarks never trip the stock guard.
func createBenchmarkCatalog(n int) []domain.InventoryItem {
	items := make([]domain.InventoryItem, n)
	for i := range items {
		items[i] = domain.InventoryItem{
			Code:      fmt.Sprintf("BENCH-%04d", i),
			Name:      fmt.Sprintf("Benchmark Item %d", i),
			UnitPrice: decimal.NewFromFloat(2.55),
			OnHand:    1 << 30,
			MaxQty:    1 << 30,
		}
	}
	return items
}

func newBenchmarkLedger(b *testing.B, n int) *services.Ledger {
	b.Helper()
	ledger, err := services.NewLedger(createBenchmarkCatalog(n), helpers.TestLogger())
	if err != nil {
		b.Fatalf("failed to build ledger: %v", err)
	}
	return ledger
}
