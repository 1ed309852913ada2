// internal/workers/tasks.go
package workers

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type names registered on the asynq mux
const (
	TypeReplenishmentOrder = "replenishment:order"
	TypeReceiptExport      = "receipts:export"
)

// ReplenishmentPayload describes one reorder for an item that fell to or
// below its threshold after a settle.
type ReplenishmentPayload struct {
	JobID    string `json:"job_id"`
	ItemCode string `json:"item_code"`
	ItemName string `json:"item_name"`
	OnHand   int    `json:"on_hand"`
	OrderQty int    `json:"order_qty"`
}

// ExportPayload describes a receipts workbook export request.
type ExportPayload struct {
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
	Status   string `json:"status,omitempty"`
}

// NewReplenishmentTask builds an asynq task for a reorder.
func NewReplenishmentTask(p ReplenishmentPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal replenishment payload: %w", err)
	}
	return asynq.NewTask(TypeReplenishmentOrder, payload), nil
}

// NewExportTask builds an asynq task for a receipts export.
func NewExportTask(p ExportPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export payload: %w", err)
	}
	return asynq.NewTask(TypeReceiptExport, payload), nil
}
