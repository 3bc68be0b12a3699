package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vendor is a marketplace seller whose products can appear in a cart.
// Read-only reference data during checkout.
type Vendor struct {
	ID        string          `gorm:"column:id;type:text;primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Rating    decimal.Decimal `gorm:"column:rating;type:numeric(2,1);not null;default:0"`
	AvatarURL string          `gorm:"column:avatar_url"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
