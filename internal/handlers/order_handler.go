package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/famechasepro/genewell-new/internal/models"
	"github.com/famechasepro/genewell-new/internal/services"
	adminws "github.com/famechasepro/genewell-new/internal/websocket"
)

type orderCheckout interface {
	CreateOrder(ctx context.Context, input services.CreateOrderInput) (*models.Order, error)
	ConfirmCheckout(ctx context.Context, orderID, gatewayPaymentID, signature string) (*models.Order, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) (*models.Order, error)
}

type OrderHandler struct {
	service      orderCheckout
	feed         activityFeed
	gatewayKeyID string
}

func NewOrderHandler(service orderCheckout, feed activityFeed, gatewayKeyID string) *OrderHandler {
	return &OrderHandler{service: service, feed: feed, gatewayKeyID: gatewayKeyID}
}

type createOrderRequest struct {
	SubmissionID string   `json:"submission_id"`
	Tier         string   `json:"tier"`
	AddOns       []string `json:"addons"`
	Language     string   `json:"language"`
}

func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateCreateOrderRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	order, err := h.service.CreateOrder(c.Context(), services.CreateOrderInput{
		SubmissionID: req.SubmissionID,
		Tier:         models.Tier(req.Tier),
		AddOns:       req.AddOns,
		Language:     language,
	})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
		case errors.Is(err, services.ErrUnknownAddOn):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown add-on"})
		case errors.Is(err, services.ErrPaymentsDisabled):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Payments are currently unavailable"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create order"})
		}
	}

	if h.feed != nil {
		h.feed.Publish(adminws.EventOrderCreated, string(order.Tier), order.ID, order.AmountPaise)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order":          order,
		"gateway_key_id": h.gatewayKeyID,
	})
}

type verifyPaymentRequest struct {
	OrderID          string `json:"order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	GatewaySignature string `json:"gateway_signature"`
}

func (h *OrderHandler) VerifyPayment(c *fiber.Ctx) error {
	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateVerifyPaymentRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	order, err := h.service.ConfirmCheckout(c.Context(), req.OrderID, req.GatewayPaymentID, req.GatewaySignature)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		case errors.Is(err, services.ErrBadSignature):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payment verification failed"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to verify payment"})
		}
	}

	if h.feed != nil {
		h.feed.Publish(adminws.EventPaymentCaptured, string(order.Tier), order.ID, order.AmountPaise)
	}

	return c.JSON(fiber.Map{"order": order})
}

func (h *OrderHandler) Webhook(c *fiber.Ctx) error {
	signature := c.Get("X-Razorpay-Signature")
	if signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing signature header"})
	}

	order, err := h.service.HandleWebhook(c.Context(), c.Body(), signature)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBadSignature):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid signature"})
		case errors.Is(err, pgx.ErrNoRows):
			// Unknown order: acknowledge so the gateway stops retrying.
			return c.SendStatus(fiber.StatusOK)
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook"})
		}
	}

	if order != nil && order.Status == models.OrderStatusPaid && h.feed != nil {
		h.feed.Publish(adminws.EventPaymentCaptured, string(order.Tier), order.ID, order.AmountPaise)
	}

	return c.SendStatus(fiber.StatusOK)
}
