package models

import "time"

// PaymentGateway mirrors an enabled gateway exposed on the payment step.
// The checkout lists gateways; it never charges through them.
type PaymentGateway struct {
	ID          string    `gorm:"column:id;type:text;primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description"`
	IconURL     string    `gorm:"column:icon_url"`
	// No gorm default here: a default would swallow Enabled:false on Create
	// because GORM omits zero values when a column default exists.
	Enabled     bool      `gorm:"column:enabled;not null"`
	Position    int       `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
