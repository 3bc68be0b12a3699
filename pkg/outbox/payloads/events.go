package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wasilonline/nova-checkout/pkg/enums"
)

// OrderCreatedEvent signals a submitted checkout session turned into an order.
// Downstream consumers use it to split vendor sub-orders and trigger
// fulfillment or payment collection.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID         `json:"order_id"`
	OrderNumber   int64             `json:"order_number"`
	SessionID     string            `json:"session_id"`
	Status        enums.OrderStatus `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	NeedsPayment  bool              `json:"needs_payment"`
	VendorIDs     []string          `json:"vendor_ids"`
	Total         decimal.Decimal   `json:"total"`
	Currency      string            `json:"currency"`
}

// OrderPaidEvent is emitted when an external payment processor confirms
// payment for a pending order.
type OrderPaidEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	PaymentMethod string    `json:"payment_method"`
	TransactionID string    `json:"transaction_id,omitempty"`
}
