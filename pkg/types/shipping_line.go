package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ShippingLine records the delivery method charged for one vendor's items.
type ShippingLine struct {
	VendorID string          `json:"vendor_id"`
	OptionID string          `json:"option_id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
}

// ShippingLines is the JSONB array stored on an order.
type ShippingLines []ShippingLine

// Value serializes the shipping lines to JSON.
func (s ShippingLines) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan decodes JSONB into the shipping lines slice.
func (s *ShippingLines) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, s)
}
