package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the owning entity for a variant matrix.
type Product struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   uuid.UUID        `gorm:"column:store_id;type:uuid;not null"`
	Title     string           `gorm:"column:title;not null"`
	IsActive  bool             `gorm:"column:is_active;not null;default:true"`
	Variants  []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
