package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a purchasable catalog entry owned by a vendor.
type Product struct {
	ID          string          `gorm:"column:id;type:text;primaryKey"`
	Title       string          `gorm:"column:title;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	ImageURL    string          `gorm:"column:image_url"`
	VendorID    string          `gorm:"column:vendor_id;type:text;not null"`
	Description string          `gorm:"column:description"`
	Vendor      *Vendor         `gorm:"foreignKey:VendorID"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
