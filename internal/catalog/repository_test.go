package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wasilonline/nova-checkout/pkg/db/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	vendors := `
CREATE TABLE IF NOT EXISTS vendors (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  rating TEXT NOT NULL DEFAULT '0',
  avatar_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  price TEXT NOT NULL,
  image_url TEXT,
  vendor_id TEXT NOT NULL,
  description TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	shippingOptions := `
CREATE TABLE IF NOT EXISTS shipping_options (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  price TEXT NOT NULL DEFAULT '0',
  duration TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	paymentGateways := `
CREATE TABLE IF NOT EXISTS payment_gateways (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT,
  icon_url TEXT,
  enabled INTEGER NOT NULL DEFAULT 1,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, stmt := range []string{vendors, products, shippingOptions, paymentGateways} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()

	require.NoError(t, db.Create(&models.Vendor{ID: "v1", Name: "TechHub Store", Rating: decimal.RequireFromString("4.8")}).Error)
	require.NoError(t, db.Create(&models.Vendor{ID: "v2", Name: "AudioWorld", Rating: decimal.RequireFromString("4.5")}).Error)

	require.NoError(t, db.Create(&models.Product{ID: "p1", Title: "Headphones", Price: decimal.RequireFromString("299.99"), VendorID: "v2"}).Error)
	require.NoError(t, db.Create(&models.Product{ID: "p2", Title: "Smart Watch", Price: decimal.RequireFromString("449.00"), VendorID: "v1"}).Error)

	options := []models.ShippingOption{
		{ID: "express", Name: "Express Shipping", Price: decimal.RequireFromString("15"), Duration: "2-3 business days", Position: 1},
		{ID: "free", Name: "Free Shipping", Price: decimal.Zero, Duration: "5-7 business days", Position: 0},
		{ID: "overnight", Name: "Overnight Shipping", Price: decimal.RequireFromString("35"), Duration: "1 business day", Position: 2},
	}
	for i := range options {
		require.NoError(t, db.Create(&options[i]).Error)
	}

	gateways := []models.PaymentGateway{
		{ID: "cod", Title: "Cash on Delivery", Enabled: true, Position: 2},
		{ID: "card", Title: "Credit / Debit Card", Enabled: true, Position: 0},
		{ID: "legacy", Title: "Disabled Gateway", Enabled: false, Position: 3},
	}
	for i := range gateways {
		require.NoError(t, db.Create(&gateways[i]).Error)
	}
}

func TestRepositoryShippingOptionsOrderedByPosition(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	options, err := repo.ListShippingOptions(context.Background())
	require.NoError(t, err)
	require.Len(t, options, 3)
	assert.Equal(t, "free", options[0].ID)
	assert.Equal(t, "express", options[1].ID)
	assert.Equal(t, "overnight", options[2].ID)
}

func TestRepositoryGatewaysEnabledOnly(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	gateways, err := repo.ListEnabledPaymentGateways(context.Background())
	require.NoError(t, err)
	require.Len(t, gateways, 2)
	assert.Equal(t, "card", gateways[0].ID)
	assert.Equal(t, "cod", gateways[1].ID)
}

func TestRepositoryProductsPreloadVendor(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		require.NotNil(t, p.Vendor)
		assert.Equal(t, p.VendorID, p.Vendor.ID)
	}
}
