// internal/cli/session.go

// Package cli is the terminal front end for the till. It owns the prompt
// loop only; every rule about stock, payment and receipts lives in the
// engine and the stores behind it.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/retailflow/pos-be/internal/core/domain"
	"github.com/retailflow/pos-be/internal/core/ports"
	"github.com/retailflow/pos-be/internal/core/services"
	applog "github.com/retailflow/pos-be/internal/pkg/logger"
	"github.com/retailflow/pos-be/internal/workers"
)

// Terminal wires the prompt loop to the engine.
type Terminal struct {
	engine    *services.Engine
	ledger    ports.Ledger
	auth      *services.Authenticator
	tasks     ports.TaskEnqueuer
	exportDir string
	logger    *slog.Logger

	in  *bufio.Scanner
	out io.Writer
}

// NewTerminal creates a till terminal reading commands from in and
// printing to out. tasks may be nil; the export option is then hidden.
func NewTerminal(engine *services.Engine, ledger ports.Ledger, auth *services.Authenticator, tasks ports.TaskEnqueuer, exportDir string, in io.Reader, out io.Writer, logger *slog.Logger) *Terminal {
	return &Terminal{
		engine:    engine,
		ledger:    ledger,
		auth:      auth,
		tasks:     tasks,
		exportDir: exportDir,
		logger:    logger.With(slog.String("component", "cli")),
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

// Run gates the operator through login, then serves the menu until the
// operator exits or input runs dry.
func (t *Terminal) Run(ctx context.Context) error {
	t.printf("=============================================\n")
	t.printf("  RETAILFLOW POS\n")
	t.printf("=============================================\n")

	session, err := t.login(ctx)
	if err != nil {
		return err
	}
	t.engine.SetCashier(session.Username)

	ctx = context.WithValue(ctx, applog.ContextKeySessionID, session.ID.String())
	ctx = context.WithValue(ctx, applog.ContextKeyCashier, session.Username)

	for {
		t.printMenu()
		choice, ok := t.prompt("> ")
		if !ok {
			return nil
		}

		switch strings.TrimSpace(choice) {
		case "1":
			t.showInventory(ctx)
		case "2":
			t.runSale(ctx)
		case "3":
			t.showReceipt(ctx)
		case "4":
			t.returnLine(ctx)
		case "5":
			t.cancelReceipt(ctx)
		case "6":
			t.exportReceipts(ctx)
		case "0", "q", "quit", "exit":
			t.printf("Goodbye, %s.\n", session.Username)
			return nil
		default:
			t.printf("Unknown option %q.\n", strings.TrimSpace(choice))
		}
	}
}

func (t *Terminal) login(ctx context.Context) (*services.Session, error) {
	for {
		username, ok := t.prompt("User ID: ")
		if !ok {
			return nil, errors.New("input closed during login")
		}
		password, ok := t.prompt("Password: ")
		if !ok {
			return nil, errors.New("input closed during login")
		}

		session, err := t.auth.Login(ctx, strings.TrimSpace(username), strings.TrimSpace(password))
		if err == nil {
			t.printf("Welcome, %s.\n", session.Username)
			return session, nil
		}
		if errors.Is(err, services.ErrLockedOut) {
			t.printf("Too many failed attempts. Terminal locked.\n")
			return nil, err
		}
		t.printf("Invalid credentials. %d attempt(s) remaining.\n", t.auth.AttemptsRemaining())
	}
}

func (t *Terminal) printMenu() {
	t.printf("\n--- MAIN MENU ---\n")
	t.printf(" 1. View inventory\n")
	t.printf(" 2. New sale\n")
	t.printf(" 3. Look up receipt\n")
	t.printf(" 4. Return a line\n")
	t.printf(" 5. Cancel receipt\n")
	if t.tasks != nil {
		t.printf(" 6. Export receipts to spreadsheet\n")
	}
	t.printf(" 0. Exit\n")
}

func (t *Terminal) showInventory(ctx context.Context) {
	items := t.ledger.Items(ctx)
	t.printf("\n%-10s %-42s %8s %8s\n", "UPC", "DESCRIPTION", "PRICE", "ON HAND")
	for i := range items {
		item := &items[i]
		t.printf("%-10s %-42s %8s %8d\n",
			item.Code, truncate(item.Name, 42), item.UnitPrice.StringFixed(2), item.OnHand)
	}
}

// runSale drives one pending sale: add and remove lines, then settle or
// abort. The sale never touches stock until checkout succeeds.
func (t *Terminal) runSale(ctx context.Context) {
	t.printf("\nSale started. Commands: add <upc> [qty], remove <upc>, list, checkout, abort\n")

	for {
		line, ok := t.prompt("sale> ")
		if !ok {
			t.engine.AbortSale()
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "add":
			if len(fields) < 2 {
				t.printf("Usage: add <upc> [qty]\n")
				continue
			}
			qty := 1
			if len(fields) >= 3 {
				n, err := strconv.Atoi(fields[2])
				if err != nil {
					t.printf("Bad quantity %q.\n", fields[2])
					continue
				}
				qty = n
			}
			if err := t.engine.AddItem(ctx, fields[1], qty); err != nil {
				t.printError(err)
				continue
			}
			t.printPending()

		case "remove":
			if len(fields) < 2 {
				t.printf("Usage: remove <upc>\n")
				continue
			}
			if err := t.engine.RemoveItem(ctx, fields[1]); err != nil {
				t.printError(err)
				continue
			}
			t.printPending()

		case "list":
			t.printPending()

		case "checkout":
			if t.checkout(ctx) {
				return
			}

		case "abort":
			t.engine.AbortSale()
			t.printf("Sale abandoned.\n")
			return

		default:
			t.printf("Unknown sale command %q.\n", fields[0])
		}
	}
}

// checkout reads the tendered cash and settles. Returns true when the sale
// is closed; on a payment or stock error the sale stays open for another try.
func (t *Terminal) checkout(ctx context.Context) bool {
	total := t.engine.PendingTotal()
	t.printf("Total due: %s\n", total.StringFixed(2))

	raw, ok := t.prompt("Cash tendered: ")
	if !ok {
		return false
	}
	tendered, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	if err != nil {
		t.printf("Bad amount %q.\n", strings.TrimSpace(raw))
		return false
	}

	receipt, err := t.engine.Settle(ctx, tendered)
	if err != nil {
		t.printError(err)
		return false
	}

	t.PrintReceipt(receipt)
	return true
}

func (t *Terminal) showReceipt(ctx context.Context) {
	id, ok := t.promptReceiptNo()
	if !ok {
		return
	}
	receipt, err := t.engine.Receipt(ctx, id)
	if err != nil {
		t.printError(err)
		return
	}
	t.PrintReceipt(receipt)
}

func (t *Terminal) returnLine(ctx context.Context) {
	id, ok := t.promptReceiptNo()
	if !ok {
		return
	}
	receipt, err := t.engine.Receipt(ctx, id)
	if err != nil {
		t.printError(err)
		return
	}
	t.PrintReceipt(receipt)

	raw, ok := t.prompt("Line number to return: ")
	if !ok {
		return
	}
	lineNo, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || lineNo < 1 || lineNo > len(receipt.Lines) {
		t.printf("Bad line number %q.\n", strings.TrimSpace(raw))
		return
	}
	idx := lineNo - 1

	remaining := receipt.Lines[idx].RemainingQty()
	raw, ok = t.prompt(fmt.Sprintf("Quantity to return (max %d): ", remaining))
	if !ok {
		return
	}
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		t.printf("Bad quantity %q.\n", strings.TrimSpace(raw))
		return
	}

	if err := t.engine.ReturnLine(ctx, id, idx, qty); err != nil {
		t.printError(err)
		return
	}
	t.printf("Returned %d x %s from receipt %d.\n", qty, receipt.Lines[idx].ItemCode, id)
}

func (t *Terminal) cancelReceipt(ctx context.Context) {
	id, ok := t.promptReceiptNo()
	if !ok {
		return
	}
	receipt, err := t.engine.CancelReceipt(ctx, id)
	if err != nil {
		t.printError(err)
		return
	}
	t.printf("Receipt %d cancelled; all items restocked.\n", receipt.ID)
}

func (t *Terminal) exportReceipts(ctx context.Context) {
	if t.tasks == nil {
		t.printf("Export is not available on this terminal.\n")
		return
	}

	jobID := uuid.New().String()
	path := filepath.Join(t.exportDir, fmt.Sprintf("receipts_%s.xlsx", time.Now().Format("20060102_150405")))

	task, err := workers.NewExportTask(workers.ExportPayload{
		JobID:    jobID,
		FilePath: path,
	})
	if err != nil {
		t.printError(err)
		return
	}
	if _, err := t.tasks.EnqueueContext(ctx, task, asynq.Queue("low")); err != nil {
		t.printError(err)
		return
	}
	t.printf("Export queued (job %s): %s\n", jobID, path)
}

// PrintReceipt renders a committed receipt in till-tape format.
func (t *Terminal) PrintReceipt(r *domain.Receipt) {
	t.printf("\n=============================================\n")
	t.printf("  RECEIPT #%d\n", r.ID)
	if r.Cashier != "" {
		t.printf("  Cashier: %s\n", r.Cashier)
	}
	t.printf("  %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	t.printf("---------------------------------------------\n")
	for i := range r.Lines {
		line := &r.Lines[i]
		flag := ""
		if line.Returned {
			flag = "  [RETURNED]"
		} else if line.ReturnedQty > 0 {
			flag = fmt.Sprintf("  [%d RETURNED]", line.ReturnedQty)
		}
		t.printf("%2d. %-10s %-24s %3d x %8s = %9s%s\n",
			i+1, line.ItemCode, truncate(line.ItemName, 24), line.Quantity,
			line.UnitPrice.StringFixed(2), line.Subtotal().StringFixed(2), flag)
	}
	t.printf("---------------------------------------------\n")
	t.printf("  TOTAL:    %10s\n", r.Total.StringFixed(2))
	t.printf("  TENDERED: %10s\n", r.CashTendered.StringFixed(2))
	t.printf("  CHANGE:   %10s\n", r.Change.StringFixed(2))
	if r.Status == domain.ReceiptCancelled {
		t.printf("  *** CANCELLED ***\n")
	}
	t.printf("=============================================\n")
}

func (t *Terminal) printPending() {
	lines := t.engine.Pending()
	if len(lines) == 0 {
		t.printf("(sale is empty)\n")
		return
	}
	for i := range lines {
		t.printf("%2d. %-10s %-24s %3d x %8s = %9s\n",
			i+1, lines[i].ItemCode, truncate(lines[i].ItemName, 24), lines[i].Quantity,
			lines[i].UnitPrice.StringFixed(2), lines[i].Subtotal().StringFixed(2))
	}
	t.printf("    Running total: %s\n", t.engine.PendingTotal().StringFixed(2))
}

func (t *Terminal) promptReceiptNo() (int64, bool) {
	raw, ok := t.prompt("Receipt number: ")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		t.printf("Bad receipt number %q.\n", strings.TrimSpace(raw))
		return 0, false
	}
	return id, true
}

func (t *Terminal) prompt(label string) (string, bool) {
	t.printf("%s", label)
	if !t.in.Scan() {
		return "", false
	}
	return t.in.Text(), true
}

func (t *Terminal) printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}

// printError maps domain errors to operator-facing messages.
func (t *Terminal) printError(err error) {
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		t.printf("No such item.\n")
	case errors.Is(err, domain.ErrInsufficientStock):
		t.printf("Not enough stock on hand.\n")
	case errors.Is(err, domain.ErrInsufficientPayment):
		t.printf("Cash tendered does not cover the total.\n")
	case errors.Is(err, domain.ErrReceiptNotFound):
		t.printf("No such receipt.\n")
	case errors.Is(err, domain.ErrLineAlreadyReturned):
		t.printf("That line has already been returned in full.\n")
	case errors.Is(err, domain.ErrReceiptAlreadyCancelled):
		t.printf("That receipt is already cancelled.\n")
	case errors.Is(err, domain.ErrReturnConflict):
		t.printf("Receipt has returned lines; cancel is not allowed.\n")
	case errors.Is(err, domain.ErrInvalidQuantity):
		t.printf("Quantity is out of range.\n")
	case errors.Is(err, domain.ErrEmptySale):
		t.printf("Nothing on the sale to check out.\n")
	default:
		t.printf("Error: %v\n", err)
		t.logger.Error("unexpected terminal error", slog.String("error", err.Error()))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
