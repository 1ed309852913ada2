// internal/cli/demo.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/retailflow/pos-be/internal/core/domain"
	"github.com/retailflow/pos-be/internal/core/ports"
	"github.com/retailflow/pos-be/internal/core/services"
)

// Demo runs a scripted walkthrough against live wiring: one sale, a receipt
// lookup, a full return, and the error paths an operator hits most. It is
// meant for smoke-testing a fresh install without a keyboard.
type Demo struct {
	engine *services.Engine
	ledger ports.Ledger
	out    io.Writer
	logger *slog.Logger
}

// NewDemo creates a scripted demo session.
func NewDemo(engine *services.Engine, ledger ports.Ledger, out io.Writer, logger *slog.Logger) *Demo {
	return &Demo{
		engine: engine,
		ledger: ledger,
		out:    out,
		logger: logger.With(slog.String("component", "demo")),
	}
}

// Run executes the walkthrough. Any unexpected failure aborts with an error;
// the deliberate failure cases must fail, and succeed by failing.
func (d *Demo) Run(ctx context.Context) error {
	d.printf("=============================================\n")
	d.printf("  RETAILFLOW POS | DEMO MODE\n")
	d.printf("=============================================\n")

	d.engine.SetCashier("demo")

	items := d.ledger.Items(ctx)
	if len(items) == 0 {
		return errors.New("demo requires at least one catalog item")
	}
	item := items[0]
	d.printf("\nUsing catalog item %s %q (%s, %d on hand)\n",
		item.Code, item.Name, item.UnitPrice.StringFixed(2), item.OnHand)

	// Ring up one unit and pay a dollar over.
	if err := d.engine.AddItem(ctx, item.Code, 1); err != nil {
		return fmt.Errorf("demo add: %w", err)
	}
	tendered := d.engine.PendingTotal().Add(decimal.NewFromFloat(1.00))
	receipt, err := d.engine.Settle(ctx, tendered)
	if err != nil {
		return fmt.Errorf("demo settle: %w", err)
	}

	term := &Terminal{out: d.out, logger: d.logger}
	term.PrintReceipt(receipt)

	after, err := d.ledger.Lookup(ctx, item.Code)
	if err != nil {
		return fmt.Errorf("demo lookup: %w", err)
	}
	d.printf("On hand after sale: %d\n", after.OnHand)

	// Fetch it back through the engine, cache and all.
	fetched, err := d.engine.Receipt(ctx, receipt.ID)
	if err != nil {
		return fmt.Errorf("demo fetch receipt %d: %w", receipt.ID, err)
	}
	d.printf("Fetched receipt #%d, total %s\n", fetched.ID, fetched.Total.StringFixed(2))

	// Return the line; stock comes back.
	if err := d.engine.ReturnLine(ctx, receipt.ID, 0, 1); err != nil {
		return fmt.Errorf("demo return: %w", err)
	}
	after, err = d.ledger.Lookup(ctx, item.Code)
	if err != nil {
		return fmt.Errorf("demo lookup: %w", err)
	}
	d.printf("Returned line 1; on hand is back to %d\n", after.OnHand)

	// A second return of the same line must bounce.
	err = d.engine.ReturnLine(ctx, receipt.ID, 0, 1)
	if !errors.Is(err, domain.ErrLineAlreadyReturned) {
		return fmt.Errorf("demo expected repeat return to fail, got %v", err)
	}
	d.printf("Repeat return rejected: %v\n", err)

	// Overselling must bounce without touching the sale or stock.
	err = d.engine.AddItem(ctx, item.Code, after.OnHand+1)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		return fmt.Errorf("demo expected oversell to fail, got %v", err)
	}
	d.printf("Oversell rejected: %v\n", err)

	// Underpayment must bounce and leave the sale open.
	if err := d.engine.AddItem(ctx, item.Code, 1); err != nil {
		return fmt.Errorf("demo add: %w", err)
	}
	short := d.engine.PendingTotal().Sub(decimal.NewFromFloat(1.00))
	if short.IsNegative() {
		short = decimal.Zero
	}
	_, err = d.engine.Settle(ctx, short)
	if !errors.Is(err, domain.ErrInsufficientPayment) {
		return fmt.Errorf("demo expected underpayment to fail, got %v", err)
	}
	d.printf("Underpayment rejected: %v\n", err)
	d.engine.AbortSale()

	d.printf("\nDemo complete.\n")
	return nil
}

func (d *Demo) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}
