package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultBaseURL = "https://api.razorpay.com"

// Client talks to the Razorpay Orders API. Amounts are in paise.
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

func NewClient(keyID, keySecret string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		keyID:      keyID,
		keySecret:  keySecret,
		httpClient: http.DefaultClient,
	}
}

// NewClientWithBaseURL exists for tests against a local fake gateway.
func NewClientWithBaseURL(keyID, keySecret, baseURL string) *Client {
	client := NewClient(keyID, keySecret)
	client.baseURL = strings.TrimRight(baseURL, "/")
	return client
}

type GatewayOrder struct {
	ID          string `json:"id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*GatewayOrder, error) {
	payload, err := json.Marshal(map[string]any{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("create gateway order: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var order GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode gateway order: %w", err)
	}
	return &order, nil
}

// VerifyCheckoutSignature checks the signature the checkout widget hands
// back after payment: HMAC-SHA256 of "<order_id>|<payment_id>" under the
// key secret.
func (c *Client) VerifyCheckoutSignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return verifyHMAC([]byte(gatewayOrderID+"|"+gatewayPaymentID), signature, c.keySecret)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against
// the raw webhook body under the webhook secret.
func VerifyWebhookSignature(body []byte, signature, webhookSecret string) bool {
	return verifyHMAC(body, signature, webhookSecret)
}

func verifyHMAC(message []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

type WebhookEvent struct {
	Event            string
	GatewayOrderID   string
	GatewayPaymentID string
}

func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var raw struct {
		Event   string `json:"event"`
		Payload struct {
			Payment struct {
				Entity struct {
					ID      string `json:"id"`
					OrderID string `json:"order_id"`
				} `json:"entity"`
			} `json:"payment"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	if raw.Event == "" {
		return nil, fmt.Errorf("webhook payload missing event")
	}
	return &WebhookEvent{
		Event:            raw.Event,
		GatewayOrderID:   raw.Payload.Payment.Entity.OrderID,
		GatewayPaymentID: raw.Payload.Payment.Entity.ID,
	}, nil
}
