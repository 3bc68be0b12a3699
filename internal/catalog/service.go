package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wasilonline/nova-checkout/pkg/db/models"
	pkgerrors "github.com/wasilonline/nova-checkout/pkg/errors"
	"github.com/wasilonline/nova-checkout/pkg/logger"
)

// CartLine pairs a product with the quantity seeded into a new session.
type CartLine struct {
	Product  models.Product
	Quantity int
}

// CheckoutContext is the reference data a checkout session is seeded from.
type CheckoutContext struct {
	Cart            []CartLine
	Vendors         []models.Vendor
	ShippingOptions []models.ShippingOption
	PaymentGateways []models.PaymentGateway
}

// DefaultShippingOptionID returns the catalog's first option id, or "" when
// the catalog is empty.
func (c *CheckoutContext) DefaultShippingOptionID() string {
	if c == nil || len(c.ShippingOptions) == 0 {
		return ""
	}
	return c.ShippingOptions[0].ID
}

// ShippingPrices maps option ids to prices for the pricing calculator.
func (c *CheckoutContext) ShippingPrices() map[string]decimal.Decimal {
	if c == nil {
		return nil
	}
	prices := make(map[string]decimal.Decimal, len(c.ShippingOptions))
	for _, opt := range c.ShippingOptions {
		prices[opt.ID] = opt.Price
	}
	return prices
}

// ShippingOption returns the catalog entry for the given id.
func (c *CheckoutContext) ShippingOption(id string) (models.ShippingOption, bool) {
	if c == nil {
		return models.ShippingOption{}, false
	}
	for _, opt := range c.ShippingOptions {
		if opt.ID == id {
			return opt, true
		}
	}
	return models.ShippingOption{}, false
}

// PaymentGateway returns the enabled gateway for the given id.
func (c *CheckoutContext) PaymentGateway(id string) (models.PaymentGateway, bool) {
	if c == nil {
		return models.PaymentGateway{}, false
	}
	for _, gw := range c.PaymentGateways {
		if gw.ID == id {
			return gw, true
		}
	}
	return models.PaymentGateway{}, false
}

// Service exposes catalog reads to the checkout flow.
type Service interface {
	Context(ctx context.Context) (*CheckoutContext, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService builds the catalog service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Context assembles the full checkout context in one read. The seeded cart
// holds every product at quantity 1; callers may replace it with their own
// snapshot at session creation.
func (s *service) Context(ctx context.Context) (*CheckoutContext, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	vendors, err := s.repo.ListVendors(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendors")
	}
	options, err := s.repo.ListShippingOptions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipping options")
	}
	gateways, err := s.repo.ListEnabledPaymentGateways(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment gateways")
	}

	cart := make([]CartLine, 0, len(products))
	for _, p := range products {
		cart = append(cart, CartLine{Product: p, Quantity: 1})
	}

	return &CheckoutContext{
		Cart:            cart,
		Vendors:         vendors,
		ShippingOptions: options,
		PaymentGateways: gateways,
	}, nil
}
