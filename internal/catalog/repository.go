package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/wasilonline/nova-checkout/pkg/db/models"
)

// Repository reads the checkout reference catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListProducts loads all products with their vendors, oldest first.
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Order("created_at ASC").
		Order("id ASC").
		Find(&products).Error
	return products, err
}

// FindProduct loads one product by id.
func (r *Repository) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListVendors loads all vendors.
func (r *Repository) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := r.db.WithContext(ctx).Order("id ASC").Find(&vendors).Error
	return vendors, err
}

// ListShippingOptions loads the shipping catalog in display order. The first
// row is the default option.
func (r *Repository) ListShippingOptions(ctx context.Context) ([]models.ShippingOption, error) {
	var options []models.ShippingOption
	err := r.db.WithContext(ctx).
		Order("position ASC").
		Order("id ASC").
		Find(&options).Error
	return options, err
}

// ListEnabledPaymentGateways loads selectable gateways in display order. The
// first row is the default gateway.
func (r *Repository) ListEnabledPaymentGateways(ctx context.Context) ([]models.PaymentGateway, error) {
	var gateways []models.PaymentGateway
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("position ASC").
		Order("id ASC").
		Find(&gateways).Error
	return gateways, err
}
