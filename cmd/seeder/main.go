// cmd/seeder/main.go

// Seeder bootstraps a fresh till: it writes the item catalog and user
// data files, hashing passwords with bcrypt on the way out.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/retailflow/pos-be/internal/adapters/catalog"
	"github.com/retailflow/pos-be/internal/core/domain"
)

func main() {
	var (
		dataDir  = flag.String("data-dir", "data", "Directory for the generated data files")
		force    = flag.Bool("force", false, "Overwrite existing data files")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		logger.Error("failed to create data directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	catalogPath := filepath.Join(*dataDir, "RetailStoreItemData.csv")
	usersPath := filepath.Join(*dataDir, "UserData.csv")

	if !*force {
		for _, path := range []string{catalogPath, usersPath} {
			if _, err := os.Stat(path); err == nil {
				logger.Error("data file already exists, use -force to overwrite",
					slog.String("path", path))
				os.Exit(1)
			}
		}
	}

	if err := catalog.SaveCatalog(catalogPath, sampleItems()); err != nil {
		logger.Error("failed to write catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("catalog written",
		slog.String("path", catalogPath),
		slog.Int("items", len(sampleItems())))

	if err := writeUsers(usersPath); err != nil {
		logger.Error("failed to write users file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("users written", slog.String("path", usersPath))

	fmt.Println("Seed complete. Default login: cashier1 / changeme")
}

func sampleItems() []domain.InventoryItem {
	price := func(s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		if err != nil {
			panic(err)
		}
		return d
	}

	return []domain.InventoryItem{
		{Code: "72800B", Name: "4 PURPLE FLOCK DINNER CANDLES", UnitPrice: price("2.55"), OnHand: 2, MaxQty: 24, OrderThreshold: 4, ReplenishQty: 12},
		{Code: "21730", Name: "GLASS STAR FROSTED T-LIGHT HOLDER", UnitPrice: price("4.25"), OnHand: 18, MaxQty: 36, OrderThreshold: 6, ReplenishQty: 24},
		{Code: "84406B", Name: "CREAM CUPID HEARTS COAT HANGER", UnitPrice: price("2.75"), OnHand: 8, MaxQty: 32, OrderThreshold: 8, ReplenishQty: 16},
		{Code: "85123A", Name: "WHITE HANGING HEART T-LIGHT HOLDER", UnitPrice: price("2.55"), OnHand: 24, MaxQty: 64, OrderThreshold: 12, ReplenishQty: 32},
		{Code: "71053", Name: "WHITE METAL LANTERN", UnitPrice: price("3.39"), OnHand: 12, MaxQty: 24, OrderThreshold: 4, ReplenishQty: 12},
		{Code: "84029G", Name: "KNITTED UNION FLAG HOT WATER BOTTLE", UnitPrice: price("3.39"), OnHand: 6, MaxQty: 24, OrderThreshold: 6, ReplenishQty: 12},
		{Code: "22752", Name: "SET 7 BABUSHKA NESTING BOXES", UnitPrice: price("7.65"), OnHand: 4, MaxQty: 12, OrderThreshold: 2, ReplenishQty: 6},
	}
}

func writeUsers(path string) error {
	users := []struct {
		username string
		password string
	}{
		{"cashier1", "changeme"},
		{"cashier2", "changeme"},
		{"manager", "letmein"},
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create users file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"User_ID", "Password"}); err != nil {
		return fmt.Errorf("failed to write users header: %w", err)
	}

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", u.username, err)
		}
		if err := writer.Write([]string{u.username, string(hash)}); err != nil {
			return fmt.Errorf("failed to write user %s: %w", u.username, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
