package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	checkoutsvc "github.com/wasilonline/nova-checkout/internal/checkout"
	"github.com/wasilonline/nova-checkout/internal/orders"
	"github.com/wasilonline/nova-checkout/internal/pricing"
	"github.com/wasilonline/nova-checkout/pkg/db/models"
	"github.com/wasilonline/nova-checkout/pkg/enums"
	pkgerrors "github.com/wasilonline/nova-checkout/pkg/errors"
)

type stubCheckoutService struct {
	session *checkoutsvc.Session
	err     error

	lastSeed     []checkoutsvc.SeedItem
	lastDelta    int
	lastVendorID string
	lastOptionID string
	lastMethod   string
	lastDetails  checkoutsvc.UserDetails
	deleted      []string
}

func (s *stubCheckoutService) Create(_ context.Context, seed []checkoutsvc.SeedItem) (*checkoutsvc.Session, error) {
	s.lastSeed = seed
	return s.session, s.err
}

func (s *stubCheckoutService) Get(context.Context, string) (*checkoutsvc.Session, error) {
	return s.session, s.err
}

func (s *stubCheckoutService) Advance(context.Context, string) (*checkoutsvc.Session, error) {
	return s.session, s.err
}

func (s *stubCheckoutService) Retreat(context.Context, string) (*checkoutsvc.Session, error) {
	return s.session, s.err
}

func (s *stubCheckoutService) UpdateQuantity(_ context.Context, _, _ string, delta int) (*checkoutsvc.Session, error) {
	s.lastDelta = delta
	return s.session, s.err
}

func (s *stubCheckoutService) RemoveItem(context.Context, string, string) (*checkoutsvc.Session, error) {
	return s.session, s.err
}

func (s *stubCheckoutService) UpdateDetails(_ context.Context, _ string, details checkoutsvc.UserDetails) (*checkoutsvc.Session, error) {
	s.lastDetails = details
	return s.session, s.err
}

func (s *stubCheckoutService) UpdateShipping(_ context.Context, _, vendorID, optionID string) (*checkoutsvc.Session, error) {
	s.lastVendorID = vendorID
	s.lastOptionID = optionID
	return s.session, s.err
}

func (s *stubCheckoutService) Submit(_ context.Context, _, paymentMethod string) (*checkoutsvc.Session, error) {
	s.lastMethod = paymentMethod
	return s.session, s.err
}

func (s *stubCheckoutService) Delete(_ context.Context, sessionID string) error {
	s.deleted = append(s.deleted, sessionID)
	return s.err
}

func sampleSession() *checkoutsvc.Session {
	return &checkoutsvc.Session{
		State: &checkoutsvc.CheckoutState{
			SessionID: "sess-1",
			Step:      checkoutsvc.StepCart,
			Cart: []checkoutsvc.CartItem{
				{ProductID: "p2", Title: "Smart Watch", UnitPrice: decimal.RequireFromString("449.00"), VendorID: "v1", Quantity: 1},
				{ProductID: "p1", Title: "Headphones", UnitPrice: decimal.RequireFromString("299.99"), VendorID: "v2", Quantity: 2},
			},
			ShippingSelection: map[string]string{"v1": "free"},
		},
		Totals: pricing.Totals{
			Subtotal: decimal.RequireFromString("1048.98"),
			Shipping: decimal.Zero,
			Tax:      decimal.RequireFromString("83.92"),
			Total:    decimal.RequireFromString("1132.90"),
		},
		Vendors: []models.Vendor{
			{ID: "v1", Name: "TechHub Store", Rating: decimal.RequireFromString("4.8")},
		},
		ShippingOptions: []models.ShippingOption{
			{ID: "free", Name: "Free Shipping", Price: decimal.Zero, Duration: "5-7 business days"},
		},
		PaymentGateways: []models.PaymentGateway{
			{ID: "card", Title: "Credit / Debit Card"},
		},
	}
}

func sessionRequest(method, url string, body string, params map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rc := chi.NewRouteContext()
	for key, value := range params {
		rc.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func decodeSession(t *testing.T, resp *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var envelope struct {
		Data sessionResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func TestCheckoutSessionCreateSeedsCart(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{session: sampleSession()}
	handler := CheckoutSessionCreate(svc, nil)

	req := sessionRequest(http.MethodPost, "/api/v1/checkout/sessions", `{"items":[{"productId":"p1","quantity":2}]}`, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.lastSeed) != 1 || svc.lastSeed[0].ProductID != "p1" || svc.lastSeed[0].Quantity != 2 {
		t.Fatalf("unexpected seed %+v", svc.lastSeed)
	}

	data := decodeSession(t, resp)
	if data.SessionID != "sess-1" || data.Step != "cart" {
		t.Fatalf("unexpected session payload %+v", data)
	}
	if data.Totals.Total != "1132.90" {
		t.Fatalf("expected total 1132.90 got %s", data.Totals.Total)
	}
	if data.Cart[1].LineTotal != "599.98" {
		t.Fatalf("expected line total 599.98 got %s", data.Cart[1].LineTotal)
	}
}

func TestCheckoutSessionCreateAllowsEmptyBody(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{session: sampleSession()}
	handler := CheckoutSessionCreate(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/checkout/sessions", "", nil))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.lastSeed) != 0 {
		t.Fatalf("expected empty seed got %+v", svc.lastSeed)
	}
}

func TestCheckoutSessionCreateRejectsInvalidSeed(t *testing.T) {
	t.Parallel()

	handler := CheckoutSessionCreate(&stubCheckoutService{session: sampleSession()}, nil)

	req := sessionRequest(http.MethodPost, "/api/v1/checkout/sessions", `{"items":[{"quantity":2}]}`, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutSessionDetailNotFound(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")}
	handler := CheckoutSessionDetail(svc, nil)

	req := sessionRequest(http.MethodGet, "/api/v1/checkout/sessions/missing", "", map[string]string{"sessionID": "missing"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCheckoutItemUpdatePassesDelta(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{session: sampleSession()}
	handler := CheckoutItemUpdate(svc, nil)

	req := sessionRequest(http.MethodPatch, "/api/v1/checkout/sessions/sess-1/items/p1", `{"delta":-1}`,
		map[string]string{"sessionID": "sess-1", "itemID": "p1"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastDelta != -1 {
		t.Fatalf("expected delta -1 got %d", svc.lastDelta)
	}
}

func TestCheckoutShippingUpdateRequiresFields(t *testing.T) {
	t.Parallel()

	handler := CheckoutShippingUpdate(&stubCheckoutService{session: sampleSession()}, nil)

	req := sessionRequest(http.MethodPut, "/api/v1/checkout/sessions/sess-1/shipping", `{"vendorId":"v1"}`,
		map[string]string{"sessionID": "sess-1"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutShippingUpdatePassesSelection(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{session: sampleSession()}
	handler := CheckoutShippingUpdate(svc, nil)

	req := sessionRequest(http.MethodPut, "/api/v1/checkout/sessions/sess-1/shipping", `{"vendorId":"v2","optionId":"express"}`,
		map[string]string{"sessionID": "sess-1"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastVendorID != "v2" || svc.lastOptionID != "express" {
		t.Fatalf("unexpected selection %s/%s", svc.lastVendorID, svc.lastOptionID)
	}
}

func TestCheckoutDetailsUpdateRejectsBadEmail(t *testing.T) {
	t.Parallel()

	handler := CheckoutDetailsUpdate(&stubCheckoutService{session: sampleSession()}, nil)

	req := sessionRequest(http.MethodPut, "/api/v1/checkout/sessions/sess-1/details", `{"email":"not-an-email"}`,
		map[string]string{"sessionID": "sess-1"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutSubmitIncludesSubmission(t *testing.T) {
	t.Parallel()

	orderID := uuid.New()
	session := sampleSession()
	session.State.Step = checkoutsvc.StepCompleted
	session.State.OrderID = orderID.String()
	session.State.OrderNumber = 1001
	session.Submission = &orders.SubmitResult{
		OrderID:      orderID,
		OrderNumber:  1001,
		Status:       enums.OrderStatusProcessing,
		NeedsPayment: false,
		RedirectURL:  "/checkout/order-received/" + orderID.String(),
	}

	svc := &stubCheckoutService{session: session}
	handler := CheckoutSubmit(svc, nil)

	req := sessionRequest(http.MethodPost, "/api/v1/checkout/sessions/sess-1/submit", `{"paymentMethod":"cod"}`,
		map[string]string{"sessionID": "sess-1"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastMethod != "cod" {
		t.Fatalf("expected payment method cod got %s", svc.lastMethod)
	}

	data := decodeSession(t, resp)
	if data.Submission == nil {
		t.Fatalf("expected submission payload")
	}
	if data.Submission.Status != string(enums.OrderStatusProcessing) || data.Submission.NeedsPayment {
		t.Fatalf("unexpected submission %+v", data.Submission)
	}
	if data.OrderNumber != 1001 {
		t.Fatalf("expected order number 1001 got %d", data.OrderNumber)
	}
}

func TestCheckoutSubmitStateConflict(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "session is not at the payment step")}
	handler := CheckoutSubmit(svc, nil)

	req := sessionRequest(http.MethodPost, "/api/v1/checkout/sessions/sess-1/submit", "",
		map[string]string{"sessionID": "sess-1"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestCheckoutSessionDelete(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{}
	handler := CheckoutSessionDelete(svc, nil)

	req := sessionRequest(http.MethodDelete, "/api/v1/checkout/sessions/sess-1", "",
		map[string]string{"sessionID": "sess-1"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != "sess-1" {
		t.Fatalf("unexpected deletes %+v", svc.deleted)
	}
}
