package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/wasilonline/nova-checkout/api/responses"
	"github.com/wasilonline/nova-checkout/api/validators"
	checkoutsvc "github.com/wasilonline/nova-checkout/internal/checkout"
	"github.com/wasilonline/nova-checkout/internal/orders"
	"github.com/wasilonline/nova-checkout/internal/pricing"
	"github.com/wasilonline/nova-checkout/pkg/db/models"
	pkgerrors "github.com/wasilonline/nova-checkout/pkg/errors"
	"github.com/wasilonline/nova-checkout/pkg/logger"
	"github.com/wasilonline/nova-checkout/pkg/types"
)

// CheckoutSessionCreate opens a new checkout session. The body is optional; a
// cart snapshot replaces the default catalog seed when present.
func CheckoutSessionCreate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload createSessionRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		seed := make([]checkoutsvc.SeedItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			seed = append(seed, checkoutsvc.SeedItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		session, err := svc.Create(r.Context(), seed)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newSessionResponse(session))
	}
}

func CheckoutSessionDetail(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Get(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

// CheckoutSessionAdvance moves the wizard forward. At the payment step this
// runs the submission flow with the session's chosen gateway.
func CheckoutSessionAdvance(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Advance(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

func CheckoutSessionBack(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Retreat(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

func CheckoutItemUpdate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.UpdateQuantity(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "itemID"), payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

func CheckoutItemRemove(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.RemoveItem(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "itemID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

func CheckoutDetailsUpdate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload detailsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.UpdateDetails(r.Context(), chi.URLParam(r, "sessionID"), checkoutsvc.UserDetails{
			Email:                 payload.Email,
			Phone:                 payload.Phone,
			Shipping:              payload.Shipping,
			BillingSameAsShipping: payload.BillingSameAsShipping,
			Billing:               payload.Billing,
			OrderNotes:            payload.OrderNotes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

func CheckoutShippingUpdate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload shippingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.UpdateShipping(r.Context(), chi.URLParam(r, "sessionID"), payload.VendorID, payload.OptionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

// CheckoutSubmit runs the submission flow with an explicit payment method.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload submitRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		session, err := svc.Submit(r.Context(), chi.URLParam(r, "sessionID"), payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newSessionResponse(session))
	}
}

func CheckoutSessionDelete(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createSessionRequest struct {
	Items []seedItemRequest `json:"items" validate:"omitempty,dive"`
}

type seedItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

type updateItemRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type detailsRequest struct {
	Email                 string        `json:"email" validate:"omitempty,email"`
	Phone                 string        `json:"phone"`
	Shipping              types.Address `json:"shipping"`
	BillingSameAsShipping bool          `json:"billingSameAsShipping"`
	Billing               types.Address `json:"billing"`
	OrderNotes            string        `json:"orderNotes"`
}

type shippingRequest struct {
	VendorID string `json:"vendorId" validate:"required"`
	OptionID string `json:"optionId" validate:"required"`
}

type submitRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

type sessionResponse struct {
	SessionID         string                   `json:"sessionId"`
	Step              string                   `json:"step"`
	Cart              []cartItemResponse       `json:"cart"`
	Details           detailsResponse          `json:"details"`
	ShippingSelection map[string]string        `json:"shippingSelection"`
	PaymentMethod     string                   `json:"paymentMethod,omitempty"`
	Totals            totalsResponse           `json:"totals"`
	Vendors           []vendorResponse         `json:"vendors"`
	ShippingOptions   []shippingOptionResponse `json:"shippingOptions"`
	PaymentGateways   []gatewayResponse        `json:"paymentGateways"`
	Submission        *submissionResponse      `json:"submission,omitempty"`
	OrderID           string                   `json:"orderId,omitempty"`
	OrderNumber       int64                    `json:"orderNumber,omitempty"`
}

type cartItemResponse struct {
	ProductID   string `json:"productId"`
	Title       string `json:"title"`
	UnitPrice   string `json:"unitPrice"`
	ImageURL    string `json:"imageUrl,omitempty"`
	VendorID    string `json:"vendorId"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"lineTotal"`
}

type detailsResponse struct {
	Email                 string        `json:"email"`
	Phone                 string        `json:"phone,omitempty"`
	Shipping              types.Address `json:"shipping"`
	BillingSameAsShipping bool          `json:"billingSameAsShipping"`
	Billing               types.Address `json:"billing"`
	OrderNotes            string        `json:"orderNotes,omitempty"`
}

type totalsResponse struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

type vendorResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Rating    string `json:"rating"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type shippingOptionResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Duration string `json:"duration"`
}

type gatewayResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IconURL     string `json:"iconUrl,omitempty"`
}

type submissionResponse struct {
	OrderID      string `json:"orderId"`
	OrderNumber  int64  `json:"orderNumber"`
	Status       string `json:"status"`
	NeedsPayment bool   `json:"needsPayment"`
	RedirectURL  string `json:"redirectUrl"`
}

func newSessionResponse(session *checkoutsvc.Session) sessionResponse {
	if session == nil || session.State == nil {
		return sessionResponse{}
	}
	state := session.State

	cart := make([]cartItemResponse, 0, len(state.Cart))
	for _, item := range state.Cart {
		cart = append(cart, newCartItemResponse(item))
	}

	selection := state.ShippingSelection
	if selection == nil {
		selection = map[string]string{}
	}

	return sessionResponse{
		SessionID:         state.SessionID,
		Step:              state.Step.String(),
		Cart:              cart,
		Details:           newDetailsResponse(state.Details),
		ShippingSelection: selection,
		PaymentMethod:     state.PaymentMethod,
		Totals:            newTotalsResponse(session.Totals),
		Vendors:           newVendorResponses(session.Vendors),
		ShippingOptions:   newShippingOptionResponses(session.ShippingOptions),
		PaymentGateways:   newGatewayResponses(session.PaymentGateways),
		Submission:        newSubmissionResponse(session.Submission),
		OrderID:           state.OrderID,
		OrderNumber:       state.OrderNumber,
	}
}

func newCartItemResponse(item checkoutsvc.CartItem) cartItemResponse {
	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}
	return cartItemResponse{
		ProductID:   item.ProductID,
		Title:       item.Title,
		UnitPrice:   item.UnitPrice.StringFixed(2),
		ImageURL:    item.ImageURL,
		VendorID:    item.VendorID,
		Description: item.Description,
		Quantity:    qty,
		LineTotal:   item.UnitPrice.Mul(decimal.NewFromInt(int64(qty))).StringFixed(2),
	}
}

func newDetailsResponse(details checkoutsvc.UserDetails) detailsResponse {
	return detailsResponse{
		Email:                 details.Email,
		Phone:                 details.Phone,
		Shipping:              details.Shipping,
		BillingSameAsShipping: details.BillingSameAsShipping,
		Billing:               details.Billing,
		OrderNotes:            details.OrderNotes,
	}
}

func newTotalsResponse(totals pricing.Totals) totalsResponse {
	return totalsResponse{
		Subtotal: totals.Subtotal.StringFixed(2),
		Shipping: totals.Shipping.StringFixed(2),
		Tax:      totals.Tax.StringFixed(2),
		Total:    totals.Total.StringFixed(2),
	}
}

func newVendorResponses(vendors []models.Vendor) []vendorResponse {
	out := make([]vendorResponse, 0, len(vendors))
	for _, vendor := range vendors {
		out = append(out, vendorResponse{
			ID:        vendor.ID,
			Name:      vendor.Name,
			Rating:    vendor.Rating.StringFixed(1),
			AvatarURL: vendor.AvatarURL,
		})
	}
	return out
}

func newShippingOptionResponses(options []models.ShippingOption) []shippingOptionResponse {
	out := make([]shippingOptionResponse, 0, len(options))
	for _, option := range options {
		out = append(out, shippingOptionResponse{
			ID:       option.ID,
			Name:     option.Name,
			Price:    option.Price.StringFixed(2),
			Duration: option.Duration,
		})
	}
	return out
}

func newGatewayResponses(gateways []models.PaymentGateway) []gatewayResponse {
	out := make([]gatewayResponse, 0, len(gateways))
	for _, gateway := range gateways {
		out = append(out, gatewayResponse{
			ID:          gateway.ID,
			Title:       gateway.Title,
			Description: gateway.Description,
			IconURL:     gateway.IconURL,
		})
	}
	return out
}

func newSubmissionResponse(result *orders.SubmitResult) *submissionResponse {
	if result == nil {
		return nil
	}
	return &submissionResponse{
		OrderID:      result.OrderID.String(),
		OrderNumber:  result.OrderNumber,
		Status:       string(result.Status),
		NeedsPayment: result.NeedsPayment,
		RedirectURL:  result.RedirectURL,
	}
}
