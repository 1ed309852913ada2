// internal/adapters/catalog/loader_test.go
package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailflow/pos-be/internal/adapters/catalog"
	"github.com/retailflow/pos-be/test/helpers"
)

func TestLoadCatalog(t *testing.T) {
	t.Run("parses well-formed rows", func(t *testing.T) {
		path := helpers.WriteTestCatalogFile(t, t.TempDir(), []string{
			"72800B,4 PURPLE FLOCK DINNER CANDLES,24,4,12,2,2.55",
			"21730,GLASS STAR FROSTED T-LIGHT HOLDER,36,6,24,18,$4.25",
		})

		items, err := catalog.LoadCatalog(path, helpers.TestLogger())
		require.NoError(t, err)
		require.Len(t, items, 2)

		assert.Equal(t, "72800B", items[0].Code)
		assert.Equal(t, "4 PURPLE FLOCK DINNER CANDLES", items[0].Name)
		assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromFloat(2.55)))
		assert.Equal(t, 2, items[0].OnHand)
		assert.Equal(t, 24, items[0].MaxQty)
		assert.Equal(t, 4, items[0].OrderThreshold)
		assert.Equal(t, 12, items[0].ReplenishQty)

		// Dollar-prefixed prices are accepted.
		assert.True(t, items[1].UnitPrice.Equal(decimal.NewFromFloat(4.25)))
	})

	t.Run("skips malformed rows", func(t *testing.T) {
		path := helpers.WriteTestCatalogFile(t, t.TempDir(), []string{
			"72800B,4 PURPLE FLOCK DINNER CANDLES,24,4,12,2,2.55",
			"BAD1,MISSING FIELDS,24",
			"BAD2,BAD PRICE,24,4,12,2,not-a-price",
			",NO CODE,24,4,12,2,2.55",
		})

		items, err := catalog.LoadCatalog(path, helpers.TestLogger())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "72800B", items[0].Code)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := catalog.LoadCatalog(filepath.Join(t.TempDir(), "nope.csv"), helpers.TestLogger())
		require.Error(t, err)
	})
}

func TestSaveCatalog_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "RetailStoreItemData.csv")

	items := helpers.CreateTestCatalog()
	items[0].OnHand = 7

	require.NoError(t, catalog.SaveCatalog(path, items))

	loaded, err := catalog.LoadCatalog(path, helpers.TestLogger())
	require.NoError(t, err)
	require.Len(t, loaded, len(items))
	assert.Equal(t, 7, loaded[0].OnHand)
	assert.True(t, loaded[0].UnitPrice.Equal(items[0].UnitPrice))

	// No stray temp file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadUsers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "UserData.csv")
	content := "User_ID,Password\ncashier1,$2a$10$abcdefghijklmnopqrstuv\nshort\n,empty\nmanager,letmein\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	users, err := catalog.LoadUsers(path, helpers.TestLogger())
	require.NoError(t, err)

	require.Len(t, users, 2)
	assert.Equal(t, "$2a$10$abcdefghijklmnopqrstuv", users["cashier1"])
	assert.Equal(t, "letmein", users["manager"])
}
