package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wasilonline/nova-checkout/internal/pricing"
	"github.com/wasilonline/nova-checkout/pkg/config"
	dbpkg "github.com/wasilonline/nova-checkout/pkg/db"
	"github.com/wasilonline/nova-checkout/pkg/db/models"
	"github.com/wasilonline/nova-checkout/pkg/enums"
	pkgerrors "github.com/wasilonline/nova-checkout/pkg/errors"
	"github.com/wasilonline/nova-checkout/pkg/logger"
	"github.com/wasilonline/nova-checkout/pkg/metrics"
	"github.com/wasilonline/nova-checkout/pkg/outbox"
	"github.com/wasilonline/nova-checkout/pkg/outbox/payloads"
	"github.com/wasilonline/nova-checkout/pkg/types"
)

// PaymentMethodCOD settles offline; orders paid this way skip the pay page.
const PaymentMethodCOD = "cod"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type submitLocker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	SubmitLockKey(sessionID string) string
}

// SubmitInput is the serialized checkout handed to the submission flow.
type SubmitInput struct {
	SessionID          string
	Email              string
	BillingAddress     types.Address
	ShippingAddress    types.Address
	PaymentMethod      string
	PaymentMethodTitle string
	Items              []models.OrderLineItem
	ShippingLines      types.ShippingLines
	Totals             pricing.Totals
	VendorIDs          []string
}

// SubmitResult is what the wizard needs to resolve the Payment step.
type SubmitResult struct {
	OrderID      uuid.UUID
	OrderNumber  int64
	Status       enums.OrderStatus
	NeedsPayment bool
	RedirectURL  string
}

// Service executes the order submission flow and serves the order records
// the received and pay pages read afterwards.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetBySession(ctx context.Context, sessionID string) (*models.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, transactionID string) (*models.Order, error)
}

type service struct {
	tx      txRunner
	repo    *Repository
	outbox  outboxPublisher
	locker  submitLocker
	cfg     config.CheckoutConfig
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics
}

// NewService builds the orders service.
func NewService(
	tx txRunner,
	repo *Repository,
	publisher outboxPublisher,
	locker submitLocker,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
	m *metrics.CheckoutMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if locker == nil {
		return nil, fmt.Errorf("submit locker required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:      tx,
		repo:    repo,
		outbox:  publisher,
		locker:  locker,
		cfg:     cfg,
		logg:    logg,
		metrics: m,
	}, nil
}

// Submit creates the order for a checkout session exactly once. A per-session
// lock rejects concurrent submissions; the session_id unique index backstops
// the lock so a double-advance race still produces a single order.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if strings.TrimSpace(input.SessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}

	lockKey := s.locker.SubmitLockKey(input.SessionID)
	acquired, err := s.locker.SetNX(ctx, lockKey, time.Now().UTC().Format(time.RFC3339), s.cfg.SubmitLockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire submit lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "submission already in progress")
	}
	defer func() {
		if err := s.locker.Del(context.WithoutCancel(ctx), lockKey); err != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, input.SessionID), "release submit lock failed")
		}
	}()

	timeout := s.cfg.SubmitTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	result, err := s.createOrder(ctx, input)
	s.metrics.ObserveSubmitDuration(input.PaymentMethod, time.Since(started))
	if err != nil {
		s.metrics.IncSubmit(input.PaymentMethod, "failure")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order submission timed out")
		}
		return nil, err
	}
	s.metrics.IncSubmit(input.PaymentMethod, "success")

	logCtx := s.logg.WithOrderID(s.logg.WithSessionID(ctx, input.SessionID), result.OrderID.String())
	s.logg.Info(logCtx, "order created")
	return result, nil
}

// Get loads an order with its line items.
func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// GetBySession resolves the order a submitted checkout session produced, so
// a client holding only the session token can reach the received page.
func (s *service) GetBySession(ctx context.Context, sessionID string) (*models.Order, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	order, err := s.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order for session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// MarkPaid records an external payment confirmation: a pending order moves
// to completed and an order.paid event leaves through the outbox in the same
// transaction. COD and already-settled orders are rejected.
func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID, transactionID string) (*models.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).UpdateStatus(ctx, order.ID, enums.OrderStatusCompleted); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.OrderPaidEvent{
				OrderID:       order.ID,
				PaymentMethod: order.PaymentMethod,
				TransactionID: transactionID,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	order.Status = enums.OrderStatusCompleted
	logCtx := s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(logCtx, "order marked paid")
	return order, nil
}

func (s *service) currency() string {
	if s.cfg.Currency != "" {
		return s.cfg.Currency
	}
	return "USD"
}

func (s *service) createOrder(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	status := enums.OrderStatusPending
	needsPayment := true
	if input.PaymentMethod == PaymentMethodCOD {
		status = enums.OrderStatusProcessing
		needsPayment = false
	}

	order := &models.Order{
		SessionID:          input.SessionID,
		Status:             status,
		Email:              input.Email,
		BillingAddress:     input.BillingAddress,
		ShippingAddress:    input.ShippingAddress,
		PaymentMethod:      input.PaymentMethod,
		PaymentMethodTitle: input.PaymentMethodTitle,
		Subtotal:           input.Totals.Subtotal.Round(2),
		ShippingTotal:      input.Totals.Shipping.Round(2),
		TaxTotal:           input.Totals.Tax.Round(2),
		Total:              input.Totals.Total.Round(2),
		ShippingLines:      input.ShippingLines,
		Items:              input.Items,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already exists for session")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.OrderCreatedEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				SessionID:     order.SessionID,
				Status:        order.Status,
				PaymentMethod: order.PaymentMethod,
				NeedsPayment:  needsPayment,
				VendorIDs:     input.VendorIDs,
				Total:         order.Total,
				Currency:      s.currency(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	redirect := fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.ReceivedURLBase, "/"), order.ID)
	if needsPayment {
		redirect = fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.PayURLBase, "/"), order.ID)
	}

	return &SubmitResult{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		Status:       order.Status,
		NeedsPayment: needsPayment,
		RedirectURL:  redirect,
	}, nil
}
