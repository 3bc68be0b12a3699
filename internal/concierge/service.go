package concierge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wasilonline/nova-checkout/internal/checkout"
	"github.com/wasilonline/nova-checkout/pkg/config"
	"github.com/wasilonline/nova-checkout/pkg/db/models"
	"github.com/wasilonline/nova-checkout/pkg/genai"
	"github.com/wasilonline/nova-checkout/pkg/logger"
	"github.com/wasilonline/nova-checkout/pkg/metrics"
)

const systemInstruction = "You are a helpful checkout concierge for a multi-vendor marketplace. " +
	"Answer briefly and only about the shopper's cart, shipping, returns, or payment. " +
	"Never ask for personal or payment data."

type textGenerator interface {
	GenerateText(ctx context.Context, req genai.GenerateRequest) (string, error)
}

// Service answers cart-related questions. It degrades to canned text whenever
// the model is unconfigured or fails; it never returns an error to callers.
type Service interface {
	Ask(ctx context.Context, cart []checkout.CartItem, vendors []models.Vendor, query string) string
}

type service struct {
	model   textGenerator
	timeout time.Duration
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics
}

// NewService builds the concierge. A nil model is allowed and means every
// reply comes from the fallback set.
func NewService(model textGenerator, cfg config.ConciergeConfig, logg *logger.Logger, m *metrics.CheckoutMetrics) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &service{
		model:   model,
		timeout: timeout,
		logg:    logg,
		metrics: m,
	}, nil
}

// Ask produces a reply for the given cart. An absent query yields the
// deterministic composition summary; a present query goes to the model with a
// single attempt and no retry.
func (s *service) Ask(ctx context.Context, cart []checkout.CartItem, vendors []models.Vendor, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		s.metrics.IncConcierge("fallback")
		return cartSummary(cart)
	}

	if s.model != nil {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		answer, err := s.model.GenerateText(ctx, genai.GenerateRequest{
			SystemInstruction: systemInstruction,
			Prompt:            buildPrompt(cart, vendors, query),
		})
		if err == nil {
			s.metrics.IncConcierge("model")
			return answer
		}
		s.logg.Warn(ctx, "concierge model call failed, serving fallback")
	}

	s.metrics.IncConcierge("fallback")
	return cannedAnswer(query)
}

func cartSummary(cart []checkout.CartItem) string {
	itemCount := 0
	seen := map[string]struct{}{}
	for _, item := range cart {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		itemCount += qty
		seen[item.VendorID] = struct{}{}
	}
	return fmt.Sprintf("Your cart has %d item(s) from %d vendor(s). Each vendor will ship separately. Need help? Ask me anything!", itemCount, len(seen))
}

func buildPrompt(cart []checkout.CartItem, vendors []models.Vendor, query string) string {
	names := make(map[string]string, len(vendors))
	for _, v := range vendors {
		names[v.ID] = v.Name
	}

	var sb strings.Builder
	sb.WriteString("Cart contents:\n")
	if len(cart) == 0 {
		sb.WriteString("- (empty)\n")
	}
	for _, item := range cart {
		vendor := names[item.VendorID]
		if vendor == "" {
			vendor = item.VendorID
		}
		fmt.Fprintf(&sb, "- %dx %s (%s) from %s\n", item.Quantity, item.Title, item.UnitPrice.StringFixed(2), vendor)
	}
	sb.WriteString("\nShopper question: ")
	sb.WriteString(query)
	return sb.String()
}

func cannedAnswer(query string) string {
	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "shipping") || strings.Contains(lower, "delivery"):
		return "Shipping times vary by vendor and method selected. Standard delivery is 5-7 business days, Express is 2-3 days, and Overnight delivers within 1 business day."
	case strings.Contains(lower, "return") || strings.Contains(lower, "refund"):
		return "Return policies vary by vendor. Most vendors offer 30-day returns for unused items. Contact the specific vendor for their return policy."
	case strings.Contains(lower, "payment") || strings.Contains(lower, "pay"):
		return "We accept all major credit cards and PayPal. Your payment is securely processed and encrypted."
	default:
		return "I'm here to help with your checkout! Ask me about shipping, returns, or any other questions."
	}
}
