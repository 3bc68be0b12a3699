package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wasilonline/nova-checkout/pkg/types"
)

// Step is the wizard position. The sequence is strictly linear.
type Step int

const (
	StepCart Step = iota
	StepDetails
	StepShipping
	StepPayment
	// StepCompleted is terminal and reached only through a resolved submission.
	StepCompleted
)

func (s Step) String() string {
	switch s {
	case StepCart:
		return "cart"
	case StepDetails:
		return "details"
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	case StepCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// CartItem is one order-preserving line in the session cart.
type CartItem struct {
	ProductID   string          `json:"productId"`
	Title       string          `json:"title"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	VendorID    string          `json:"vendorId"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
}

// UserDetails is the flat customer record. Billing fields are superseded, not
// cleared, while BillingSameAsShipping is true.
type UserDetails struct {
	Email                 string        `json:"email"`
	Phone                 string        `json:"phone,omitempty"`
	Shipping              types.Address `json:"shipping"`
	BillingSameAsShipping bool          `json:"billingSameAsShipping"`
	Billing               types.Address `json:"billing"`
	OrderNotes            string        `json:"orderNotes,omitempty"`
}

// BillingAddress resolves the address downstream consumers should charge to.
func (d UserDetails) BillingAddress() types.Address {
	if d.BillingSameAsShipping {
		return d.Shipping
	}
	return d.Billing
}

// AdvanceResult reports what Advance did.
type AdvanceResult int

const (
	// AdvanceMoved means the step incremented.
	AdvanceMoved AdvanceResult = iota
	// AdvanceBlockedEmptyCart is the guarded no-op leaving an empty cart.
	AdvanceBlockedEmptyCart
	// AdvanceSubmitRequested means the session sits at Payment and the caller
	// must run the submission flow; the step does not change here.
	AdvanceSubmitRequested
	// AdvanceNoop means the session is already completed.
	AdvanceNoop
)

// CheckoutState is the single source of truth for one checkout session.
type CheckoutState struct {
	SessionID         string            `json:"sessionId"`
	Step              Step              `json:"step"`
	Cart              []CartItem        `json:"cart"`
	Details           UserDetails       `json:"details"`
	ShippingSelection map[string]string `json:"shippingSelection"`
	PaymentMethod     string            `json:"paymentMethod,omitempty"`
	OrderID           string            `json:"orderId,omitempty"`
	OrderNumber       int64             `json:"orderNumber,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// VendorIDs returns the distinct vendor ids in cart insertion order.
func (s *CheckoutState) VendorIDs() []string {
	seen := make(map[string]struct{}, len(s.Cart))
	ids := make([]string, 0, len(s.Cart))
	for _, item := range s.Cart {
		if _, ok := seen[item.VendorID]; ok {
			continue
		}
		seen[item.VendorID] = struct{}{}
		ids = append(ids, item.VendorID)
	}
	return ids
}

// Advance moves the wizard forward one step. Leaving Details it defaults any
// vendor without a shipping selection to firstShippingOptionID, never
// overwriting a selection already made. At Payment it requests submission
// instead of incrementing.
func (s *CheckoutState) Advance(firstShippingOptionID string) AdvanceResult {
	switch s.Step {
	case StepCart:
		if len(s.Cart) == 0 {
			return AdvanceBlockedEmptyCart
		}
		s.Step = StepDetails
		return AdvanceMoved
	case StepDetails:
		s.defaultShippingSelection(firstShippingOptionID)
		s.Step = StepShipping
		return AdvanceMoved
	case StepShipping:
		s.Step = StepPayment
		return AdvanceMoved
	case StepPayment:
		return AdvanceSubmitRequested
	default:
		return AdvanceNoop
	}
}

func (s *CheckoutState) defaultShippingSelection(firstOptionID string) {
	if firstOptionID == "" {
		return
	}
	if s.ShippingSelection == nil {
		s.ShippingSelection = make(map[string]string)
	}
	for _, vendorID := range s.VendorIDs() {
		if _, ok := s.ShippingSelection[vendorID]; !ok {
			s.ShippingSelection[vendorID] = firstOptionID
		}
	}
}

// Retreat moves back one step. It is a no-op at Cart and never side-effects.
func (s *CheckoutState) Retreat() bool {
	if s.Step <= StepCart || s.Step == StepCompleted {
		return false
	}
	s.Step--
	return true
}

// UpdateQuantity applies a quantity delta to the identified item. Quantities
// floor at 1; removal is the only path to zero presence. Returns false when
// the item is not in the cart.
func (s *CheckoutState) UpdateQuantity(productID string, delta int) bool {
	for i := range s.Cart {
		if s.Cart[i].ProductID != productID {
			continue
		}
		next := s.Cart[i].Quantity + delta
		if next < 1 {
			next = 1
		}
		s.Cart[i].Quantity = next
		return true
	}
	return false
}

// RemoveItem drops the identified item from the cart. It intentionally does
// not prune ShippingSelection; a vendor's entry persists until explicitly
// cleared.
func (s *CheckoutState) RemoveItem(productID string) bool {
	for i := range s.Cart {
		if s.Cart[i].ProductID != productID {
			continue
		}
		s.Cart = append(s.Cart[:i], s.Cart[i+1:]...)
		return true
	}
	return false
}

// UpdateDetails replaces the customer record. No field-level gating applies.
func (s *CheckoutState) UpdateDetails(details UserDetails) {
	s.Details = details
}

// UpdateShipping records the chosen option for a vendor.
func (s *CheckoutState) UpdateShipping(vendorID, optionID string) {
	if s.ShippingSelection == nil {
		s.ShippingSelection = make(map[string]string)
	}
	s.ShippingSelection[vendorID] = optionID
}

// Complete marks the session terminal with the created order's identifiers.
func (s *CheckoutState) Complete(orderID string, orderNumber int64) {
	s.Step = StepCompleted
	s.OrderID = orderID
	s.OrderNumber = orderNumber
}
