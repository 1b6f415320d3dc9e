package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luistorres-dev/tiendita-backend/pkg/enums"
)

// StockMovement records one immutable stock change for a variant. Rows are
// append-only; nothing updates or deletes them after creation.
type StockMovement struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductVariantID uuid.UUID               `gorm:"column:product_variant_id;type:uuid;not null"`
	Change           int                     `gorm:"column:change;not null"`
	Type             enums.StockMovementType `gorm:"column:type;type:stock_movement_type_enum;not null"`
	RelatedID        *uuid.UUID              `gorm:"column:related_id;type:uuid"`
	Note             *string                 `gorm:"column:note"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
}
