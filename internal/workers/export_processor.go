// internal/workers/export_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/tealeg/xlsx/v3"

	"github.com/retailflow/pos-be/internal/core/ports"
)

// ExportProcessor writes receipts workbooks for back-office reporting
type ExportProcessor struct {
	receipts ports.ReceiptRepository
	logger   *slog.Logger
}

// NewExportProcessor creates a new export processor
func NewExportProcessor(receipts ports.ReceiptRepository, logger *slog.Logger) *ExportProcessor {
	return &ExportProcessor{
		receipts: receipts,
		logger:   logger.With(slog.String("processor", "export")),
	}
}

// ProcessExport queries receipts and writes them to an xlsx workbook.
func (p *ExportProcessor) ProcessExport(ctx context.Context, t *asynq.Task) error {
	var payload ExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	p.logger.InfoContext(ctx, "exporting receipts",
		slog.String("job_id", payload.JobID),
		slog.String("file_path", payload.FilePath))

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Receipts")
	if err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range []string{"Receipt No", "Status", "Cashier", "Created At", "Item Code", "Item Name", "Unit Price", "Qty", "Returned Qty", "Line Total", "Receipt Total", "Tendered", "Change"} {
		header.AddCell().SetString(h)
	}

	page := 1
	const pageSize = 200
	rows := 0

	for {
		result, err := p.receipts.List(ctx, ports.ReceiptListParams{
			Status:   payload.Status,
			Page:     page,
			PageSize: pageSize,
		})
		if err != nil {
			return fmt.Errorf("failed to list receipts (page %d): %w", page, err)
		}

		for _, receipt := range result.Receipts {
			for i := range receipt.Lines {
				line := &receipt.Lines[i]
				row := sheet.AddRow()
				row.AddCell().SetInt64(receipt.ID)
				row.AddCell().SetString(string(receipt.Status))
				row.AddCell().SetString(receipt.Cashier)
				row.AddCell().SetString(receipt.CreatedAt.Format("2006-01-02 15:04:05"))
				row.AddCell().SetString(line.ItemCode)
				row.AddCell().SetString(line.ItemName)
				row.AddCell().SetString(line.UnitPrice.StringFixed(2))
				row.AddCell().SetInt(line.Quantity)
				row.AddCell().SetInt(line.ReturnedQty)
				row.AddCell().SetString(line.Subtotal().StringFixed(2))
				row.AddCell().SetString(receipt.Total.StringFixed(2))
				row.AddCell().SetString(receipt.CashTendered.StringFixed(2))
				row.AddCell().SetString(receipt.Change.StringFixed(2))
				rows++
			}
		}

		if int64(page*pageSize) >= result.TotalCount || len(result.Receipts) == 0 {
			break
		}
		page++
	}

	if err := file.Save(payload.FilePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	p.logger.InfoContext(ctx, "receipts export completed",
		slog.String("job_id", payload.JobID),
		slog.Int("rows", rows))

	return nil
}
