package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wasilonline/nova-checkout/pkg/enums"
	"github.com/wasilonline/nova-checkout/pkg/types"
)

// Order is the durable record produced when a checkout session submits.
type Order struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber        int64               `gorm:"column:order_number;autoIncrement;uniqueIndex"`
	SessionID          string              `gorm:"column:session_id;type:text;not null;uniqueIndex"`
	Status             enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	Email              string              `gorm:"column:email"`
	BillingAddress     types.Address       `gorm:"column:billing_address;type:jsonb;serializer:json"`
	ShippingAddress    types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentMethod      string              `gorm:"column:payment_method;not null"`
	PaymentMethodTitle string              `gorm:"column:payment_method_title"`
	Subtotal           decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingTotal      decimal.Decimal     `gorm:"column:shipping_total;type:numeric(12,2);not null"`
	TaxTotal           decimal.Decimal     `gorm:"column:tax_total;type:numeric(12,2);not null"`
	Total              decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	ShippingLines      types.ShippingLines `gorm:"column:shipping_lines;type:jsonb"`
	Items              []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLineItem snapshots one cart item at submission time.
type OrderLineItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID string          `gorm:"column:product_id;type:text;not null"`
	VendorID  string          `gorm:"column:vendor_id;type:text;not null"`
	Title     string          `gorm:"column:title;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
