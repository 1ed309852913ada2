// internal/adapters/catalog/loader.go

// Package catalog loads the store's item catalog and user data files.
// Both are plain CSV so the back office can edit them in a spreadsheet.
package catalog

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/retailflow/pos-be/internal/core/domain"
)

// Catalog CSV column order
var catalogHeader = []string{
	"Item_UPC", "Item_Description", "Item_Max_Qty", "Item_Order_Threshold",
	"Item_Replenishment_Order_Qty", "Item_On_Hand", "Item_Unit_Price",
}

// LoadCatalog reads the item catalog CSV. Malformed rows are skipped with a
// warning; a bad file is an error.
func LoadCatalog(path string, logger *slog.Logger) ([]domain.InventoryItem, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	var items []domain.InventoryItem
	rowNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		rowNum++

		item, err := parseCatalogRow(record)
		if err != nil {
			logger.Warn("skipping malformed catalog row",
				slog.Int("row", rowNum),
				slog.String("error", err.Error()))
			continue
		}
		items = append(items, *item)
	}

	logger.Info("catalog loaded",
		slog.String("path", path),
		slog.Int("items", len(items)))

	return items, nil
}

func parseCatalogRow(record []string) (*domain.InventoryItem, error) {
	if len(record) < 7 {
		return nil, fmt.Errorf("expected 7 fields, got %d", len(record))
	}

	code := strings.TrimSpace(record[0])
	name := strings.TrimSpace(record[1])
	if code == "" || name == "" {
		return nil, fmt.Errorf("missing code or description")
	}

	maxQty, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil {
		return nil, fmt.Errorf("bad max qty: %w", err)
	}
	threshold, err := strconv.Atoi(strings.TrimSpace(record[3]))
	if err != nil {
		return nil, fmt.Errorf("bad order threshold: %w", err)
	}
	replenishQty, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil {
		return nil, fmt.Errorf("bad replenishment qty: %w", err)
	}
	onHand, err := strconv.Atoi(strings.TrimSpace(record[5]))
	if err != nil {
		return nil, fmt.Errorf("bad on-hand count: %w", err)
	}
	unitPrice, err := decimal.NewFromString(strings.TrimSpace(strings.TrimPrefix(record[6], "$")))
	if err != nil {
		return nil, fmt.Errorf("bad unit price: %w", err)
	}

	item := &domain.InventoryItem{
		Code:           code,
		Name:           name,
		UnitPrice:      unitPrice,
		OnHand:         onHand,
		MaxQty:         maxQty,
		OrderThreshold: threshold,
		ReplenishQty:   replenishQty,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// SaveCatalog writes the live item state back to the catalog CSV, so
// on-hand counts survive a till restart even without the database.
func SaveCatalog(path string, items []domain.InventoryItem) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create catalog file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(catalogHeader); err != nil {
		file.Close()
		return fmt.Errorf("failed to write catalog header: %w", err)
	}

	for i := range items {
		item := &items[i]
		record := []string{
			item.Code,
			item.Name,
			strconv.Itoa(item.MaxQty),
			strconv.Itoa(item.OrderThreshold),
			strconv.Itoa(item.ReplenishQty),
			strconv.Itoa(item.OnHand),
			item.UnitPrice.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			file.Close()
			return fmt.Errorf("failed to write catalog row %s: %w", item.Code, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush catalog: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close catalog file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace catalog file: %w", err)
	}
	return nil
}

// LoadUsers reads the users CSV (User_ID, Password). Passwords are bcrypt
// hashes, or plaintext in legacy files.
func LoadUsers(path string, logger *slog.Logger) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open users file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read users header: %w", err)
	}

	users := make(map[string]string)
	rowNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		rowNum++

		if len(record) < 2 {
			logger.Warn("skipping malformed users row", slog.Int("row", rowNum))
			continue
		}
		username := strings.TrimSpace(record[0])
		if username == "" {
			continue
		}
		users[username] = strings.TrimSpace(record[1])
	}

	logger.Info("users loaded",
		slog.String("path", path),
		slog.Int("count", len(users)))

	return users, nil
}
