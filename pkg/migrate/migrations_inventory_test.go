package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVariantMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_product_variants.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no product variant migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS product_variants",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
		"CHECK (stock >= 0)",
		"DROP TABLE IF EXISTS product_variants",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestStockMovementMigrationContainsLedgerSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_stock_movements.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no stock movement migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE stock_movement_type_enum AS ENUM",
		"'sale'",
		"'pos_sale'",
		"'adjustment'",
		"'restore'",
		"'cancel'",
		"'refund'",
		"CREATE TABLE IF NOT EXISTS stock_movements",
		"FOREIGN KEY (product_variant_id) REFERENCES product_variants(id) ON DELETE CASCADE",
		"idx_stock_movements_variant_created",
		"DROP TABLE IF EXISTS stock_movements",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
