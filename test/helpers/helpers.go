// test/helpers/helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/retailflow/pos-be/internal/adapters/db"
	"github.com/retailflow/pos-be/internal/core/domain"
	"github.com/retailflow/pos-be/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_pos",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_pos",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	// Wait for database to be ready
	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	// Run migrations
	ctx := context.Background()
	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		SourcePath: "../../migrations",
		TableName:  "schema_migrations",
		SchemaName: "public",
	}

	err = db.RunMigrationsWithRetry(ctx, migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		db.Close()
	})

	return mock, db
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-pos",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_pos",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
			Enabled:  true,
		},
		POS: config.POSConfig{
			DataDir:           "testdata",
			CatalogFile:       "RetailStoreItemData.csv",
			UsersFile:         "UserData.csv",
			ExportDir:         "exports",
			MaxLoginAttempts:  3,
			SaveCatalogOnExit: false,
		},
	}
}

// CreateTestItem creates a catalog item for tests
func CreateTestItem(overrides ...func(*domain.InventoryItem)) *domain.InventoryItem {
	item := &domain.InventoryItem{
		Code:           "72800B",
		Name:           "4 PURPLE FLOCK DINNER CANDLES",
		UnitPrice:      decimal.NewFromFloat(2.55),
		OnHand:         2,
		MaxQty:         24,
		OrderThreshold: 4,
		ReplenishQty:   12,
	}

	for _, override := range overrides {
		override(item)
	}

	return item
}

// CreateTestCatalog creates a small catalog with distinct item codes
func CreateTestCatalog() []domain.InventoryItem {
	return []domain.InventoryItem{
		*CreateTestItem(),
		*CreateTestItem(func(i *domain.InventoryItem) {
			i.Code = "21730"
			i.Name = "GLASS STAR FROSTED T-LIGHT HOLDER"
			i.UnitPrice = decimal.NewFromFloat(4.25)
			i.OnHand = 18
			i.OrderThreshold = 0
			i.ReplenishQty = 0
		}),
		*CreateTestItem(func(i *domain.InventoryItem) {
			i.Code = "85123A"
			i.Name = "WHITE HANGING HEART T-LIGHT HOLDER"
			i.UnitPrice = decimal.NewFromFloat(2.55)
			i.OnHand = 24
			i.OrderThreshold = 12
			i.ReplenishQty = 32
		}),
	}
}

// CreateTestReceipt creates a committed single-line receipt
func CreateTestReceipt(overrides ...func(*domain.Receipt)) *domain.Receipt {
	receipt := &domain.Receipt{
		ID: 1,
		Lines: []domain.LineItem{
			{
				ItemCode:  "72800B",
				ItemName:  "4 PURPLE FLOCK DINNER CANDLES",
				UnitPrice: decimal.NewFromFloat(2.55),
				Quantity:  1,
			},
		},
		Total:        decimal.NewFromFloat(2.55),
		CashTendered: decimal.NewFromFloat(3.55),
		Change:       decimal.NewFromFloat(1.00),
		Status:       domain.ReceiptCompleted,
		Cashier:      "cashier1",
		CreatedAt:    time.Now(),
	}

	for _, override := range overrides {
		override(receipt)
	}

	return receipt
}

// CompareReceipts compares the money and line fields of two receipts
func CompareReceipts(t *testing.T, expected, actual *domain.Receipt) {
	t.Helper()

	require.Equal(t, expected.ID, actual.ID)
	require.Equal(t, expected.Status, actual.Status)
	require.Equal(t, expected.Cashier, actual.Cashier)
	require.True(t, expected.Total.Equal(actual.Total))
	require.True(t, expected.CashTendered.Equal(actual.CashTendered))
	require.True(t, expected.Change.Equal(actual.Change))
	require.Len(t, actual.Lines, len(expected.Lines))
	for i := range expected.Lines {
		require.Equal(t, expected.Lines[i].ItemCode, actual.Lines[i].ItemCode)
		require.Equal(t, expected.Lines[i].Quantity, actual.Lines[i].Quantity)
		require.Equal(t, expected.Lines[i].ReturnedQty, actual.Lines[i].ReturnedQty)
		require.True(t, expected.Lines[i].UnitPrice.Equal(actual.Lines[i].UnitPrice))
	}
}

// NewJobID returns a fresh job identifier for worker payloads
func NewJobID() string {
	return uuid.New().String()
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"replenishment_orders",
		"receipt_lines",
		"receipts",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}

// WriteTestCatalogFile writes a catalog CSV into dir and returns its path
func WriteTestCatalogFile(t *testing.T, dir string, rows []string) string {
	t.Helper()

	header := "Item_UPC,Item_Description,Item_Max_Qty,Item_Order_Threshold,Item_Replenishment_Order_Qty,Item_On_Hand,Item_Unit_Price\n"
	content := header
	for _, row := range rows {
		content += row + "\n"
	}

	path := fmt.Sprintf("%s/RetailStoreItemData.csv", dir)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
