package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wasilonline/nova-checkout/api/responses"
	"github.com/wasilonline/nova-checkout/api/validators"
	"github.com/wasilonline/nova-checkout/internal/orders"
	"github.com/wasilonline/nova-checkout/pkg/db/models"
	pkgerrors "github.com/wasilonline/nova-checkout/pkg/errors"
	"github.com/wasilonline/nova-checkout/pkg/logger"
)

type confirmPaymentRequest struct {
	TransactionID string `json:"transactionId" validate:"omitempty,max=128"`
}

type orderItemResponse struct {
	ProductID string `json:"productId"`
	VendorID  string `json:"vendorId"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`
}

type orderResponse struct {
	OrderID            string              `json:"orderId"`
	OrderNumber        int64               `json:"orderNumber"`
	SessionID          string              `json:"sessionId"`
	Status             string              `json:"status"`
	Email              string              `json:"email,omitempty"`
	PaymentMethod      string              `json:"paymentMethod"`
	PaymentMethodTitle string              `json:"paymentMethodTitle,omitempty"`
	Subtotal           string              `json:"subtotal"`
	ShippingTotal      string              `json:"shippingTotal"`
	TaxTotal           string              `json:"taxTotal"`
	Total              string              `json:"total"`
	Items              []orderItemResponse `json:"items"`
	CreatedAt          string              `json:"createdAt"`
}

// OrderDetail serves the order record behind the received and pay pages.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// CheckoutSessionOrder resolves the order a submitted session produced, for
// clients that only hold the session token.
func CheckoutSessionOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.GetBySession(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderPaymentConfirm records an external payment confirmation for a pending
// order. The body is optional; processors that report a transaction id pass
// it through.
func OrderPaymentConfirm(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload confirmPaymentRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		order, err := svc.MarkPaid(r.Context(), orderID, payload.TransactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id")
	}
	return orderID, nil
}

func newOrderResponse(order *models.Order) *orderResponse {
	if order == nil {
		return nil
	}
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ProductID: item.ProductID,
			VendorID:  item.VendorID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.LineTotal.StringFixed(2),
		})
	}
	return &orderResponse{
		OrderID:            order.ID.String(),
		OrderNumber:        order.OrderNumber,
		SessionID:          order.SessionID,
		Status:             order.Status.String(),
		Email:              order.Email,
		PaymentMethod:      order.PaymentMethod,
		PaymentMethodTitle: order.PaymentMethodTitle,
		Subtotal:           order.Subtotal.StringFixed(2),
		ShippingTotal:      order.ShippingTotal.StringFixed(2),
		TaxTotal:           order.TaxTotal.StringFixed(2),
		Total:              order.Total.StringFixed(2),
		Items:              items,
		CreatedAt:          order.CreatedAt.UTC().Format(time.RFC3339),
	}
}
