package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/famechasepro/genewell-new/internal/models"
	"github.com/famechasepro/genewell-new/internal/services"
)

type stubOrderCheckout struct {
	createResult     *models.Order
	createErr        error
	confirmResult    *models.Order
	confirmErr       error
	webhookResult    *models.Order
	webhookErr       error
	lastCreateInput  services.CreateOrderInput
	lastConfirmArgs  []string
	lastWebhookBody  []byte
	lastWebhookSig   string
	webhookCallCount int
}

func (s *stubOrderCheckout) CreateOrder(_ context.Context, input services.CreateOrderInput) (*models.Order, error) {
	s.lastCreateInput = input
	return s.createResult, s.createErr
}

func (s *stubOrderCheckout) ConfirmCheckout(_ context.Context, orderID, gatewayPaymentID, signature string) (*models.Order, error) {
	s.lastConfirmArgs = []string{orderID, gatewayPaymentID, signature}
	return s.confirmResult, s.confirmErr
}

func (s *stubOrderCheckout) HandleWebhook(_ context.Context, body []byte, signature string) (*models.Order, error) {
	s.webhookCallCount++
	s.lastWebhookBody = body
	s.lastWebhookSig = signature
	return s.webhookResult, s.webhookErr
}

func TestCreateOrderReturnsOrderWithGatewayKey(t *testing.T) {
	service := &stubOrderCheckout{
		createResult: &models.Order{
			ID:          "ord-1",
			Tier:        models.TierEssential,
			AmountPaise: 49900,
			Status:      models.OrderStatusPending,
		},
	}
	feed := &recordingFeed{}
	handler := NewOrderHandler(service, feed, "rzp_test_key")

	app := fiber.New()
	app.Post("/api/orders", handler.CreateOrder)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{
		"submission_id": "sub-1",
		"tier": "essential",
		"addons": ["grocery-list"],
		"language": "en"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastCreateInput.Tier != models.TierEssential {
		t.Errorf("expected essential tier forwarded, got %s", service.lastCreateInput.Tier)
	}

	var body struct {
		Order        *models.Order `json:"order"`
		GatewayKeyID string        `json:"gateway_key_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.GatewayKeyID != "rzp_test_key" {
		t.Errorf("expected gateway key in response, got %q", body.GatewayKeyID)
	}
	if len(feed.events) != 1 || feed.events[0] != "order.created" {
		t.Errorf("expected order.created event, got %v", feed.events)
	}
}

func TestCreateOrderDefaultsLanguage(t *testing.T) {
	service := &stubOrderCheckout{createResult: &models.Order{ID: "ord-1", Tier: models.TierFree}}
	handler := NewOrderHandler(service, nil, "key")

	app := fiber.New()
	app.Post("/api/orders", handler.CreateOrder)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{
		"submission_id": "sub-1",
		"tier": "free"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if service.lastCreateInput.Language != "en" {
		t.Errorf("expected default language en, got %q", service.lastCreateInput.Language)
	}
}

func TestCreateOrderValidatesRequest(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing submission", `{"tier":"essential"}`},
		{"missing tier", `{"submission_id":"sub-1"}`},
		{"unknown tier", `{"submission_id":"sub-1","tier":"platinum"}`},
		{"unknown language", `{"submission_id":"sub-1","tier":"free","language":"fr"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := &stubOrderCheckout{}
			handler := NewOrderHandler(service, nil, "key")

			app := fiber.New()
			app.Post("/api/orders", handler.CreateOrder)

			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			if service.lastCreateInput.SubmissionID != "" {
				t.Errorf("expected service untouched on validation failure")
			}
		})
	}
}

func TestCreateOrderMissingSubmissionReturnsNotFound(t *testing.T) {
	service := &stubOrderCheckout{createErr: pgx.ErrNoRows}
	handler := NewOrderHandler(service, nil, "key")

	app := fiber.New()
	app.Post("/api/orders", handler.CreateOrder)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{
		"submission_id": "missing",
		"tier": "essential"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateOrderPaymentsDisabledReturnsServiceUnavailable(t *testing.T) {
	service := &stubOrderCheckout{createErr: services.ErrPaymentsDisabled}
	handler := NewOrderHandler(service, nil, "")

	app := fiber.New()
	app.Post("/api/orders", handler.CreateOrder)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{
		"submission_id": "sub-1",
		"tier": "premium"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestVerifyPaymentMarksOrderPaid(t *testing.T) {
	service := &stubOrderCheckout{
		confirmResult: &models.Order{ID: "ord-1", Tier: models.TierPremium, Status: models.OrderStatusPaid, AmountPaise: 99900},
	}
	feed := &recordingFeed{}
	handler := NewOrderHandler(service, feed, "key")

	app := fiber.New()
	app.Post("/api/payments/verify", handler.VerifyPayment)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/verify", strings.NewReader(`{
		"order_id": "ord-1",
		"gateway_payment_id": "pay_1",
		"gateway_signature": "deadbeef"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	want := []string{"ord-1", "pay_1", "deadbeef"}
	for i, arg := range want {
		if service.lastConfirmArgs[i] != arg {
			t.Errorf("confirm arg %d: expected %s, got %s", i, arg, service.lastConfirmArgs[i])
		}
	}
	if len(feed.events) != 1 || feed.events[0] != "payment.captured" {
		t.Errorf("expected payment.captured event, got %v", feed.events)
	}
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	service := &stubOrderCheckout{confirmErr: services.ErrBadSignature}
	handler := NewOrderHandler(service, nil, "key")

	app := fiber.New()
	app.Post("/api/payments/verify", handler.VerifyPayment)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/verify", strings.NewReader(`{
		"order_id": "ord-1",
		"gateway_payment_id": "pay_1",
		"gateway_signature": "forged"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWebhookRequiresSignatureHeader(t *testing.T) {
	service := &stubOrderCheckout{}
	handler := NewOrderHandler(service, nil, "key")

	app := fiber.New()
	app.Post("/api/payments/webhook", handler.Webhook)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(`{}`))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if service.webhookCallCount != 0 {
		t.Errorf("expected service untouched without signature header")
	}
}

func TestWebhookForwardsBodyAndSignature(t *testing.T) {
	service := &stubOrderCheckout{
		webhookResult: &models.Order{ID: "ord-1", Tier: models.TierEssential, Status: models.OrderStatusPaid},
	}
	feed := &recordingFeed{}
	handler := NewOrderHandler(service, feed, "key")

	app := fiber.New()
	app.Post("/api/payments/webhook", handler.Webhook)

	body := `{"event":"payment.captured"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", "abc123")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if string(service.lastWebhookBody) != body {
		t.Errorf("expected raw body forwarded, got %q", service.lastWebhookBody)
	}
	if service.lastWebhookSig != "abc123" {
		t.Errorf("expected signature forwarded, got %q", service.lastWebhookSig)
	}
	if len(feed.events) != 1 || feed.events[0] != "payment.captured" {
		t.Errorf("expected payment.captured event, got %v", feed.events)
	}
}

// The gateway retries webhooks that don't return 2xx, so an order we don't
// know about is acknowledged rather than errored.
func TestWebhookAcknowledgesUnknownOrder(t *testing.T) {
	service := &stubOrderCheckout{webhookErr: pgx.ErrNoRows}
	handler := NewOrderHandler(service, nil, "key")

	app := fiber.New()
	app.Post("/api/payments/webhook", handler.Webhook)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(`{}`))
	req.Header.Set("X-Razorpay-Signature", "abc123")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestWebhookRejectsForgedSignature(t *testing.T) {
	service := &stubOrderCheckout{webhookErr: services.ErrBadSignature}
	handler := NewOrderHandler(service, nil, "key")

	app := fiber.New()
	app.Post("/api/payments/webhook", handler.Webhook)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(`{}`))
	req.Header.Set("X-Razorpay-Signature", "forged")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
