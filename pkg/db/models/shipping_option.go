package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippingOption is one entry of the fixed delivery catalog. Position 0 is
// the default used when a vendor has no explicit selection.
type ShippingOption struct {
	ID        string          `gorm:"column:id;type:text;primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	Duration  string          `gorm:"column:duration;not null"`
	Position  int             `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
