package inventory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/luistorres-dev/tiendita-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	migrateTestDB(t, conn)
	return conn
}

// newFileTestDB opens a file-backed database with immediate transactions so
// concurrent writers queue on the database write lock the way Postgres row
// locks queue adjustments.
func newFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.db")
	dsn := "file:" + path + "?_txlock=immediate&_busy_timeout=5000"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open file db: %v", err)
	}
	migrateTestDB(t, conn)
	return conn
}

func migrateTestDB(t *testing.T, conn *gorm.DB) {
	t.Helper()

	variants := `
CREATE TABLE IF NOT EXISTS product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  price_cents INTEGER NOT NULL DEFAULT 0,
  stock INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	movements := `
CREATE TABLE IF NOT EXISTS stock_movements (
  id TEXT PRIMARY KEY,
  product_variant_id TEXT NOT NULL,
  "change" INTEGER NOT NULL,
  type TEXT NOT NULL,
  related_id TEXT,
  note TEXT,
  created_at DATETIME
);`
	for _, stmt := range []string{variants, movements} {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("migrate test db: %v", err)
		}
	}
}

func mustCreateVariant(t *testing.T, conn *gorm.DB, stock int) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{
		ID:         uuid.New(),
		ProductID:  uuid.New(),
		SKU:        "SKU-" + uuid.NewString(),
		PriceCents: 1500,
		Stock:      stock,
	}
	if err := conn.Create(variant).Error; err != nil {
		t.Fatalf("create variant: %v", err)
	}
	return variant
}

// gormTxRunner adapts a raw GORM connection to the service's transaction
// runner so tests exercise real begin/commit/rollback.
type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
