package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/famechasepro/genewell-new/internal/models"
	"github.com/famechasepro/genewell-new/internal/payment"
	"github.com/famechasepro/genewell-new/internal/repository"
)

var (
	ErrUnknownAddOn     = errors.New("unknown add-on")
	ErrBadSignature     = errors.New("payment signature mismatch")
	ErrPaymentsDisabled = errors.New("payment gateway not configured")
)

// Plan pricing in paise.
var tierPricesPaise = map[models.Tier]int64{
	models.TierFree:      0,
	models.TierEssential: 49900,
	models.TierPremium:   99900,
	models.TierCoaching:  199900,
}

var addOnPricesPaise = map[string]int64{
	"grocery-list": 19900,
}

type orderStore interface {
	Create(ctx context.Context, input repository.CreateOrderInput) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	UpdateStatusIfCurrent(ctx context.Context, id string, currentStatus, nextStatus string) (*models.Order, error)
}

type orderSubmissionStore interface {
	GetByID(ctx context.Context, id string) (*models.QuizSubmission, error)
}

type paymentGateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*payment.GatewayOrder, error)
	VerifyCheckoutSignature(gatewayOrderID, gatewayPaymentID, signature string) bool
}

type OrderService struct {
	orderRepo      orderStore
	submissionRepo orderSubmissionStore
	gateway        paymentGateway
	webhookSecret  string
}

func NewOrderService(orderRepo orderStore, submissionRepo orderSubmissionStore, gateway paymentGateway, webhookSecret string) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		submissionRepo: submissionRepo,
		gateway:        gateway,
		webhookSecret:  webhookSecret,
	}
}

type CreateOrderInput struct {
	SubmissionID string
	Tier         models.Tier
	AddOns       []string
	Language     string
}

// CreateOrder prices the selection, registers it with the gateway and
// stores the pending row. Free-tier orders skip the gateway and are paid
// immediately.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if _, err := s.submissionRepo.GetByID(ctx, input.SubmissionID); err != nil {
		return nil, err
	}

	amount, err := priceSelection(input.Tier, input.AddOns)
	if err != nil {
		return nil, err
	}

	orderID := uuid.NewString()
	status := models.OrderStatusPending
	gatewayOrderID := ""

	if amount == 0 {
		status = models.OrderStatusPaid
	} else {
		if s.gateway == nil {
			return nil, ErrPaymentsDisabled
		}
		gatewayOrder, err := s.gateway.CreateOrder(ctx, amount, "INR", orderID)
		if err != nil {
			return nil, err
		}
		gatewayOrderID = gatewayOrder.ID
	}

	return s.orderRepo.Create(ctx, repository.CreateOrderInput{
		ID:             orderID,
		SubmissionID:   input.SubmissionID,
		Tier:           input.Tier,
		AddOns:         input.AddOns,
		AmountPaise:    amount,
		Currency:       "INR",
		GatewayOrderID: gatewayOrderID,
		Status:         status,
		Language:       input.Language,
	})
}

// ConfirmCheckout verifies the signature the checkout widget returned and
// marks the order paid. Confirming an already-paid order is a no-op.
func (s *OrderService) ConfirmCheckout(ctx context.Context, orderID, gatewayPaymentID, signature string) (*models.Order, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.gateway.VerifyCheckoutSignature(order.GatewayOrderID, gatewayPaymentID, signature) {
		return nil, ErrBadSignature
	}
	return s.markPaid(ctx, order)
}

// HandleWebhook verifies and applies a gateway webhook. Returns the
// affected order, or nil for event types this service ignores.
func (s *OrderService) HandleWebhook(ctx context.Context, body []byte, signature string) (*models.Order, error) {
	if !payment.VerifyWebhookSignature(body, signature, s.webhookSecret) {
		return nil, ErrBadSignature
	}

	event, err := payment.ParseWebhookEvent(body)
	if err != nil {
		return nil, err
	}

	switch event.Event {
	case payment.EventPaymentCaptured, payment.EventPaymentFailed:
	default:
		return nil, nil
	}

	order, err := s.orderRepo.GetByGatewayOrderID(ctx, event.GatewayOrderID)
	if err != nil {
		return nil, err
	}

	if event.Event == payment.EventPaymentFailed {
		failed, err := s.orderRepo.UpdateStatusIfCurrent(ctx, order.ID, models.OrderStatusPending, models.OrderStatusFailed)
		if errors.Is(err, pgx.ErrNoRows) {
			return order, nil
		}
		return failed, err
	}
	return s.markPaid(ctx, order)
}

func (s *OrderService) markPaid(ctx context.Context, order *models.Order) (*models.Order, error) {
	paid, err := s.orderRepo.UpdateStatusIfCurrent(ctx, order.ID, models.OrderStatusPending, models.OrderStatusPaid)
	if errors.Is(err, pgx.ErrNoRows) {
		// Already transitioned, usually by the webhook racing the
		// checkout confirmation.
		if order.Status == models.OrderStatusPaid {
			return order, nil
		}
		current, getErr := s.orderRepo.GetByID(ctx, order.ID)
		if getErr != nil {
			return nil, getErr
		}
		if current.Status == models.OrderStatusPaid {
			return current, nil
		}
		return nil, fmt.Errorf("order %s cannot transition from %s to paid", order.ID, current.Status)
	}
	if err != nil {
		return nil, err
	}
	return paid, nil
}

func priceSelection(tier models.Tier, addOns []string) (int64, error) {
	amount, ok := tierPricesPaise[tier]
	if !ok {
		return 0, fmt.Errorf("unknown tier %q", tier)
	}
	for _, addOn := range addOns {
		price, ok := addOnPricesPaise[addOn]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownAddOn, addOn)
		}
		amount += price
	}
	return amount, nil
}
