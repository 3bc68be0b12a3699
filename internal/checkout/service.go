package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wasilonline/nova-checkout/internal/catalog"
	"github.com/wasilonline/nova-checkout/internal/orders"
	"github.com/wasilonline/nova-checkout/internal/pricing"
	"github.com/wasilonline/nova-checkout/pkg/config"
	"github.com/wasilonline/nova-checkout/pkg/db/models"
	pkgerrors "github.com/wasilonline/nova-checkout/pkg/errors"
	"github.com/wasilonline/nova-checkout/pkg/logger"
	"github.com/wasilonline/nova-checkout/pkg/types"
)

// SeedItem requests one cart line when creating a session.
type SeedItem struct {
	ProductID string
	Quantity  int
}

// Session is the API view of one checkout: state plus derived data that is
// recomputed on every read.
type Session struct {
	State           *CheckoutState
	Totals          pricing.Totals
	Vendors         []models.Vendor
	ShippingOptions []models.ShippingOption
	PaymentGateways []models.PaymentGateway
	Submission      *orders.SubmitResult
}

// Service drives the checkout wizard.
type Service interface {
	Create(ctx context.Context, seed []SeedItem) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Advance(ctx context.Context, sessionID string) (*Session, error)
	Retreat(ctx context.Context, sessionID string) (*Session, error)
	UpdateQuantity(ctx context.Context, sessionID, productID string, delta int) (*Session, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (*Session, error)
	UpdateDetails(ctx context.Context, sessionID string, details UserDetails) (*Session, error)
	UpdateShipping(ctx context.Context, sessionID, vendorID, optionID string) (*Session, error)
	Submit(ctx context.Context, sessionID, paymentMethod string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

type service struct {
	store   SessionStore
	catalog catalog.Service
	orders  orders.Service
	taxRate decimal.Decimal
	logg    *logger.Logger
}

// NewService builds the checkout service.
func NewService(store SessionStore, catalogSvc catalog.Service, ordersSvc orders.Service, cfg config.CheckoutConfig, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if ordersSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	rate, err := decimal.NewFromString(cfg.TaxRatePercent)
	if err != nil {
		return nil, fmt.Errorf("parse tax rate %q: %w", cfg.TaxRatePercent, err)
	}
	return &service{
		store:   store,
		catalog: catalogSvc,
		orders:  ordersSvc,
		taxRate: rate,
		logg:    logg,
	}, nil
}

// Create seeds a new session from the catalog checkout context. When seed is
// empty the context's active cart is used as-is.
func (s *service) Create(ctx context.Context, seed []SeedItem) (*Session, error) {
	cc, err := s.catalog.Context(ctx)
	if err != nil {
		return nil, err
	}

	cart, err := buildCart(cc, seed)
	if err != nil {
		return nil, err
	}

	state := &CheckoutState{
		SessionID:         uuid.NewString(),
		Step:              StepCart,
		Cart:              cart,
		ShippingSelection: map[string]string{},
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithSessionID(ctx, state.SessionID), "checkout session created")
	return s.view(state, cc, nil), nil
}

func buildCart(cc *catalog.CheckoutContext, seed []SeedItem) ([]CartItem, error) {
	lines := cc.Cart
	if len(seed) > 0 {
		byID := make(map[string]catalog.CartLine, len(lines))
		for _, line := range lines {
			byID[line.Product.ID] = line
		}
		lines = lines[:0:0]
		for _, item := range seed {
			line, ok := byID[item.ProductID]
			if !ok {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product in cart snapshot").
					WithDetails(map[string]string{"productId": item.ProductID})
			}
			qty := item.Quantity
			if qty < 1 {
				qty = 1
			}
			line.Quantity = qty
			lines = append(lines, line)
		}
	}

	cart := make([]CartItem, 0, len(lines))
	for _, line := range lines {
		cart = append(cart, CartItem{
			ProductID:   line.Product.ID,
			Title:       line.Product.Title,
			UnitPrice:   line.Product.Price,
			ImageURL:    line.Product.ImageURL,
			VendorID:    line.Product.VendorID,
			Description: line.Product.Description,
			Quantity:    line.Quantity,
		})
	}
	return cart, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*Session, error) {
	state, cc, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(state, cc, nil), nil
}

// Advance moves the wizard forward. At Payment it runs the submission flow
// with the session's chosen gateway instead of incrementing the step.
func (s *service) Advance(ctx context.Context, sessionID string) (*Session, error) {
	state, cc, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch state.Advance(cc.DefaultShippingOptionID()) {
	case AdvanceMoved:
		if state.Step == StepPayment && state.PaymentMethod == "" && len(cc.PaymentGateways) > 0 {
			state.PaymentMethod = cc.PaymentGateways[0].ID
		}
		if err := s.store.Save(ctx, state); err != nil {
			return nil, err
		}
		return s.view(state, cc, nil), nil
	case AdvanceSubmitRequested:
		return s.submit(ctx, state, cc, state.PaymentMethod)
	default:
		// Guarded no-op: empty cart at Cart, or already completed.
		return s.view(state, cc, nil), nil
	}
}

func (s *service) Retreat(ctx context.Context, sessionID string) (*Session, error) {
	state, cc, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Retreat() {
		if err := s.store.Save(ctx, state); err != nil {
			return nil, err
		}
	}
	return s.view(state, cc, nil), nil
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID, productID string, delta int) (*Session, error) {
	state, cc, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !state.UpdateQuantity(productID, delta) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return s.view(state, cc, nil), nil
}

func (s *service) RemoveItem(ctx context.Context, sessionID, productID string) (*Session, error) {
	state, cc, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !state.RemoveItem(productID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return s.view(state, cc, nil), nil
}

func (s *service) UpdateDetails(ctx context.Context, sessionID string, details UserDetails) (*Session, error) {
	state, cc, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state.UpdateDetails(details)
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return s.view(state, cc, nil), nil
}

func (s *service) UpdateShipping(ctx context.Context, sessionID, vendorID, optionID string) (*Session, error) {
	state, cc, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, ok := cc.ShippingOption(optionID); !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown shipping option").
			WithDetails(map[string]string{"optionId": optionID})
	}
	state.UpdateShipping(vendorID, optionID)
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return s.view(state, cc, nil), nil
}

// Submit runs the submission flow with an explicit payment method, moving the
// session to Payment first when it is already past Details.
func (s *service) Submit(ctx context.Context, sessionID, paymentMethod string) (*Session, error) {
	state, cc, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Step == StepCompleted {
		return s.view(state, cc, nil), nil
	}
	if state.Step != StepPayment {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "session is not at the payment step").
			WithDetails(map[string]string{"step": state.Step.String()})
	}
	return s.submit(ctx, state, cc, paymentMethod)
}

func (s *service) Delete(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

func (s *service) submit(ctx context.Context, state *CheckoutState, cc *catalog.CheckoutContext, paymentMethod string) (*Session, error) {
	method := strings.TrimSpace(paymentMethod)
	if method == "" && len(cc.PaymentGateways) > 0 {
		method = cc.PaymentGateways[0].ID
	}
	gateway, ok := cc.PaymentGateway(method)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").
			WithDetails(map[string]string{"paymentMethod": method})
	}

	input := orders.SubmitInput{
		SessionID:          state.SessionID,
		Email:              state.Details.Email,
		BillingAddress:     state.Details.BillingAddress(),
		ShippingAddress:    state.Details.Shipping,
		PaymentMethod:      gateway.ID,
		PaymentMethodTitle: gateway.Title,
		Items:              orderItems(state),
		ShippingLines:      shippingLines(state, cc),
		Totals:             s.totals(state, cc),
		VendorIDs:          state.VendorIDs(),
	}

	result, err := s.orders.Submit(ctx, input)
	if err != nil {
		// The session stays at Payment and mutable; retry is another advance.
		return nil, err
	}

	state.PaymentMethod = gateway.ID
	state.Complete(result.OrderID.String(), result.OrderNumber)
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return s.view(state, cc, result), nil
}

func orderItems(state *CheckoutState) []models.OrderLineItem {
	items := make([]models.OrderLineItem, 0, len(state.Cart))
	for _, item := range state.Cart {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, models.OrderLineItem{
			ProductID: item.ProductID,
			VendorID:  item.VendorID,
			Title:     item.Title,
			Quantity:  qty,
			UnitPrice: item.UnitPrice,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	return items
}

func shippingLines(state *CheckoutState, cc *catalog.CheckoutContext) types.ShippingLines {
	lines := make(types.ShippingLines, 0, len(state.ShippingSelection))
	for _, vendorID := range state.VendorIDs() {
		optionID, ok := state.ShippingSelection[vendorID]
		if !ok {
			continue
		}
		option, ok := cc.ShippingOption(optionID)
		if !ok {
			// Unknown selections price as zero; they are not fatal.
			continue
		}
		lines = append(lines, types.ShippingLine{
			VendorID: vendorID,
			OptionID: option.ID,
			Title:    option.Name,
			Price:    option.Price,
		})
	}
	return lines
}

func (s *service) totals(state *CheckoutState, cc *catalog.CheckoutContext) pricing.Totals {
	items := make([]pricing.LineItem, 0, len(state.Cart))
	for _, item := range state.Cart {
		items = append(items, pricing.LineItem{
			ProductID: item.ProductID,
			VendorID:  item.VendorID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return pricing.ComputeTotals(items, state.ShippingSelection, cc.ShippingPrices(), s.taxRate)
}

func (s *service) view(state *CheckoutState, cc *catalog.CheckoutContext, submission *orders.SubmitResult) *Session {
	return &Session{
		State:           state,
		Totals:          s.totals(state, cc).Rounded(),
		Vendors:         cc.Vendors,
		ShippingOptions: cc.ShippingOptions,
		PaymentGateways: cc.PaymentGateways,
		Submission:      submission,
	}
}

func (s *service) load(ctx context.Context, sessionID string) (*CheckoutState, *catalog.CheckoutContext, error) {
	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	cc, err := s.catalog.Context(ctx)
	if err != nil {
		return nil, nil, err
	}
	return state, cc, nil
}
