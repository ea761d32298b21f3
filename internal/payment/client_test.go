package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func sign(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyCheckoutSignature(t *testing.T) {
	client := NewClient("key_id", "key_secret")

	valid := sign("order_abc|pay_xyz", "key_secret")
	if !client.VerifyCheckoutSignature("order_abc", "pay_xyz", valid) {
		t.Errorf("expected valid signature to verify")
	}
	if client.VerifyCheckoutSignature("order_abc", "pay_xyz", sign("order_abc|pay_xyz", "wrong")) {
		t.Errorf("expected signature under wrong secret to fail")
	}
	if client.VerifyCheckoutSignature("order_other", "pay_xyz", valid) {
		t.Errorf("expected signature over different order to fail")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	if !VerifyWebhookSignature(body, sign(string(body), "whsec"), "whsec") {
		t.Errorf("expected valid webhook signature to verify")
	}
	if VerifyWebhookSignature(body, sign(string(body), "other"), "whsec") {
		t.Errorf("expected webhook signature under wrong secret to fail")
	}
}

func TestParseWebhookEvent(t *testing.T) {
	body := []byte(`{
		"event": "payment.captured",
		"payload": {"payment": {"entity": {"id": "pay_123", "order_id": "order_456"}}}
	}`)

	event, err := ParseWebhookEvent(body)
	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}
	if event.Event != EventPaymentCaptured {
		t.Errorf("expected event %q, got %q", EventPaymentCaptured, event.Event)
	}
	if event.GatewayOrderID != "order_456" || event.GatewayPaymentID != "pay_123" {
		t.Errorf("unexpected ids: %+v", event)
	}

	if _, err := ParseWebhookEvent([]byte(`{}`)); err == nil {
		t.Errorf("expected error for payload without event")
	}
	if _, err := ParseWebhookEvent([]byte(`not json`)); err == nil {
		t.Errorf("expected error for malformed payload")
	}
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		username, password, ok := r.BasicAuth()
		if !ok || username != "key_id" || password != "key_secret" {
			t.Errorf("missing or wrong basic auth")
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["amount"].(float64) != 49900 {
			t.Errorf("expected amount 49900, got %v", req["amount"])
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       "order_789",
			"amount":   49900,
			"currency": "INR",
			"receipt":  req["receipt"],
			"status":   "created",
		})
	}))
	defer server.Close()

	client := NewClientWithBaseURL("key_id", "key_secret", server.URL)
	order, err := client.CreateOrder(context.Background(), 49900, "INR", "rcpt_1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.ID != "order_789" || order.AmountPaise != 49900 || order.Currency != "INR" {
		t.Errorf("unexpected order: %+v", order)
	}
}

func TestCreateOrderSurfacesGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"description":"bad key"}}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("key_id", "wrong", server.URL)
	if _, err := client.CreateOrder(context.Background(), 100, "INR", "rcpt"); err == nil {
		t.Errorf("expected error from 401 response")
	}
}
