// internal/adapters/db/receipt_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/retailflow/pos-be/internal/core/domain"
	"github.com/retailflow/pos-be/internal/core/ports"
)

// ReceiptRepository implements ports.ReceiptRepository backed by PostgreSQL.
// Receipt numbers come from a dedicated sequence so they stay strictly
// increasing across restarts and are never reused.
type ReceiptRepository struct {
	db     *Database
	logger *slog.Logger
}

// Statically assert that *ReceiptRepository implements the port.
var _ ports.ReceiptRepository = (*ReceiptRepository)(nil)

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(database *Database, logger *slog.Logger) *ReceiptRepository {
	return &ReceiptRepository{
		db:     database,
		logger: logger.With(slog.String("repository", "receipt")),
	}
}

const insertReceiptQuery = `
	INSERT INTO receipts (receipt_no, status, total, cash_tendered, change, cashier, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

const insertLineQuery = `
	INSERT INTO receipt_lines (receipt_no, line_index, item_code, item_name, unit_price, quantity, returned_qty, returned)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const selectReceiptQuery = `
	SELECT receipt_no, status, total, cash_tendered, change, cashier, created_at, cancelled_at
	FROM receipts
	WHERE receipt_no = $1`

const selectLinesQuery = `
	SELECT item_code, item_name, unit_price, quantity, returned_qty, returned
	FROM receipt_lines
	WHERE receipt_no = $1
	ORDER BY line_index`

// NextID issues a fresh receipt number from the sequence.
func (r *ReceiptRepository) NextID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.db.QueryRow(ctx, `SELECT nextval('receipt_no_seq')`).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to allocate receipt number: %w", err)
	}
	return id, nil
}

// Commit persists the receipt header and all lines in one transaction.
func (r *ReceiptRepository) Commit(ctx context.Context, receipt *domain.Receipt) error {
	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertReceiptQuery,
			receipt.ID, receipt.Status, receipt.Total, receipt.CashTendered,
			receipt.Change, receipt.Cashier, receipt.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert receipt header: %w", err)
		}

		for i := range receipt.Lines {
			line := &receipt.Lines[i]
			_, err := tx.Exec(ctx, insertLineQuery,
				receipt.ID, i, line.ItemCode, line.ItemName,
				line.UnitPrice, line.Quantity, line.ReturnedQty, line.Returned)
			if err != nil {
				return fmt.Errorf("failed to insert line %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "receipt committed",
		slog.Int64("receipt_no", receipt.ID),
		slog.Int("lines", len(receipt.Lines)))

	return nil
}

// Fetch loads a receipt with its lines in order.
func (r *ReceiptRepository) Fetch(ctx context.Context, id int64) (*domain.Receipt, error) {
	receipt := &domain.Receipt{}
	var cashier *string

	err := r.db.QueryRow(ctx, selectReceiptQuery, id).Scan(
		&receipt.ID, &receipt.Status, &receipt.Total, &receipt.CashTendered,
		&receipt.Change, &cashier, &receipt.CreatedAt, &receipt.CancelledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("receipt %d: %w", id, domain.ErrReceiptNotFound)
		}
		return nil, fmt.Errorf("failed to fetch receipt %d: %w", id, err)
	}
	if cashier != nil {
		receipt.Cashier = *cashier
	}

	rows, err := r.db.Query(ctx, selectLinesQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for receipt %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.LineItem
		if err := rows.Scan(&line.ItemCode, &line.ItemName, &line.UnitPrice,
			&line.Quantity, &line.ReturnedQty, &line.Returned); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		receipt.Lines = append(receipt.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lines: %w", err)
	}

	return receipt, nil
}

// MarkLineReturned records qty units of a line as returned. The returned
// flag flips only when the full original quantity is back; a flagged line
// rejects further returns.
func (r *ReceiptRepository) MarkLineReturned(ctx context.Context, id int64, lineIndex int, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity %d: %w", qty, domain.ErrInvalidQuantity)
	}

	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		var status domain.ReceiptStatus
		err := tx.QueryRow(ctx,
			`SELECT status FROM receipts WHERE receipt_no = $1 FOR UPDATE`, id).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("receipt %d: %w", id, domain.ErrReceiptNotFound)
			}
			return fmt.Errorf("failed to lock receipt %d: %w", id, err)
		}
		if status == domain.ReceiptCancelled {
			return fmt.Errorf("receipt %d: %w", id, domain.ErrReceiptAlreadyCancelled)
		}

		var quantity, returnedQty int
		var returned bool
		err = tx.QueryRow(ctx,
			`SELECT quantity, returned_qty, returned FROM receipt_lines
			 WHERE receipt_no = $1 AND line_index = $2 FOR UPDATE`,
			id, lineIndex).Scan(&quantity, &returnedQty, &returned)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("line %d of receipt %d: %w", lineIndex, id, domain.ErrReceiptNotFound)
			}
			return fmt.Errorf("failed to lock line: %w", err)
		}

		if returned {
			return fmt.Errorf("line %d of receipt %d: %w", lineIndex, id, domain.ErrLineAlreadyReturned)
		}
		if qty > quantity-returnedQty {
			return fmt.Errorf("return of %d exceeds remaining %d: %w",
				qty, quantity-returnedQty, domain.ErrInvalidQuantity)
		}

		newReturned := returnedQty + qty
		_, err = tx.Exec(ctx,
			`UPDATE receipt_lines SET returned_qty = $3, returned = $4
			 WHERE receipt_no = $1 AND line_index = $2`,
			id, lineIndex, newReturned, newReturned >= quantity)
		if err != nil {
			return fmt.Errorf("failed to update line: %w", err)
		}

		return nil
	})
}

// MarkCancelled transitions a completed receipt to cancelled. Rejected once
// any line has been individually returned.
func (r *ReceiptRepository) MarkCancelled(ctx context.Context, id int64) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		var status domain.ReceiptStatus
		err := tx.QueryRow(ctx,
			`SELECT status FROM receipts WHERE receipt_no = $1 FOR UPDATE`, id).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("receipt %d: %w", id, domain.ErrReceiptNotFound)
			}
			return fmt.Errorf("failed to lock receipt %d: %w", id, err)
		}
		if status == domain.ReceiptCancelled {
			return fmt.Errorf("receipt %d: %w", id, domain.ErrReceiptAlreadyCancelled)
		}

		var hasReturns bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM receipt_lines WHERE receipt_no = $1 AND returned_qty > 0)`,
			id).Scan(&hasReturns)
		if err != nil {
			return fmt.Errorf("failed to check returns: %w", err)
		}
		if hasReturns {
			return fmt.Errorf("receipt %d: %w", id, domain.ErrReturnConflict)
		}

		_, err = tx.Exec(ctx,
			`UPDATE receipts SET status = $2, cancelled_at = NOW() WHERE receipt_no = $1`,
			id, domain.ReceiptCancelled)
		if err != nil {
			return fmt.Errorf("failed to cancel receipt: %w", err)
		}

		return nil
	})
}

// List returns a filtered page of receipts, lines included.
func (r *ReceiptRepository) List(ctx context.Context, params ports.ReceiptListParams) (*ports.ReceiptListResult, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 50
	}

	builder := sq.Select("receipt_no", "status", "total", "cash_tendered", "change", "cashier", "created_at", "cancelled_at").
		From("receipts").
		PlaceholderFormat(sq.Dollar)

	countBuilder := sq.Select("COUNT(*)").From("receipts").PlaceholderFormat(sq.Dollar)

	if params.Status != "" {
		builder = builder.Where(sq.Eq{"status": params.Status})
		countBuilder = countBuilder.Where(sq.Eq{"status": params.Status})
	}
	if params.Cashier != "" {
		builder = builder.Where(sq.Eq{"cashier": params.Cashier})
		countBuilder = countBuilder.Where(sq.Eq{"cashier": params.Cashier})
	}
	if params.From != nil {
		builder = builder.Where(sq.GtOrEq{"created_at": *params.From})
		countBuilder = countBuilder.Where(sq.GtOrEq{"created_at": *params.From})
	}
	if params.To != nil {
		builder = builder.Where(sq.Lt{"created_at": *params.To})
		countBuilder = countBuilder.Where(sq.Lt{"created_at": *params.To})
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count receipts: %w", err)
	}

	order := "receipt_no ASC"
	if params.SortOrder == "desc" {
		order = "receipt_no DESC"
	}

	query, args, err := builder.
		OrderBy(order).
		Limit(uint64(params.PageSize)).
		Offset(uint64((params.Page - 1) * params.PageSize)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []*domain.Receipt
	for rows.Next() {
		receipt := &domain.Receipt{}
		var cashier *string
		if err := rows.Scan(&receipt.ID, &receipt.Status, &receipt.Total,
			&receipt.CashTendered, &receipt.Change, &cashier,
			&receipt.CreatedAt, &receipt.CancelledAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		if cashier != nil {
			receipt.Cashier = *cashier
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}

	for _, receipt := range receipts {
		lineRows, err := r.db.Query(ctx, selectLinesQuery, receipt.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch lines for receipt %d: %w", receipt.ID, err)
		}
		for lineRows.Next() {
			var line domain.LineItem
			if err := lineRows.Scan(&line.ItemCode, &line.ItemName, &line.UnitPrice,
				&line.Quantity, &line.ReturnedQty, &line.Returned); err != nil {
				lineRows.Close()
				return nil, fmt.Errorf("failed to scan line: %w", err)
			}
			receipt.Lines = append(receipt.Lines, line)
		}
		if err := lineRows.Err(); err != nil {
			lineRows.Close()
			return nil, fmt.Errorf("failed to iterate lines: %w", err)
		}
		lineRows.Close()
	}

	return &ports.ReceiptListResult{
		Receipts:   receipts,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
	}, nil
}
