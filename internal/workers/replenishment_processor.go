// internal/workers/replenishment_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/retailflow/pos-be/internal/adapters/db"
)

// ReplenishmentProcessor records supplier reorders for low-stock items
type ReplenishmentProcessor struct {
	db     *db.Database
	logger *slog.Logger
}

// NewReplenishmentProcessor creates a new replenishment processor
func NewReplenishmentProcessor(database *db.Database, logger *slog.Logger) *ReplenishmentProcessor {
	return &ReplenishmentProcessor{
		db:     database,
		logger: logger.With(slog.String("processor", "replenishment")),
	}
}

// ProcessOrder persists a replenishment order row for the item.
// Orders are deduplicated on open item code; a second task for the same
// item while an order is still open is a no-op.
func (p *ReplenishmentProcessor) ProcessOrder(ctx context.Context, t *asynq.Task) error {
	var payload ReplenishmentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	p.logger.InfoContext(ctx, "processing replenishment order",
		slog.String("job_id", payload.JobID),
		slog.String("item_code", payload.ItemCode),
		slog.Int("on_hand", payload.OnHand),
		slog.Int("order_qty", payload.OrderQty))

	if payload.OrderQty <= 0 {
		p.logger.WarnContext(ctx, "item has no replenishment quantity configured",
			slog.String("item_code", payload.ItemCode))
		return nil
	}

	query := `
		INSERT INTO replenishment_orders (order_id, item_code, item_name, on_hand_at_order, order_qty, status)
		VALUES ($1, $2, $3, $4, $5, 'open')
		ON CONFLICT (item_code) WHERE status = 'open' DO NOTHING`

	tag, err := p.db.Exec(ctx, query,
		uuid.New(), payload.ItemCode, payload.ItemName, payload.OnHand, payload.OrderQty)
	if err != nil {
		return fmt.Errorf("failed to insert replenishment order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		p.logger.InfoContext(ctx, "open replenishment order already exists",
			slog.String("item_code", payload.ItemCode))
		return nil
	}

	p.logger.InfoContext(ctx, "replenishment order recorded",
		slog.String("item_code", payload.ItemCode),
		slog.Int("order_qty", payload.OrderQty))

	return nil
}
