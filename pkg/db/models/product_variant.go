package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant is one purchasable configuration of a product. Stock is
// mutated only through the inventory service; nothing else writes this column.
type ProductVariant struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	SKU        string    `gorm:"column:sku;not null"`
	PriceCents int       `gorm:"column:price_cents;not null;default:0"`
	Stock      int       `gorm:"column:stock;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
