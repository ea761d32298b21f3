package handlers

import (
	"strings"

	"github.com/famechasepro/genewell-new/internal/models"
)

var allowedLanguages = map[string]struct{}{
	"en": {},
	"hi": {},
}

func validateCreateOrderRequest(req createOrderRequest) string {
	if strings.TrimSpace(req.SubmissionID) == "" {
		return "submission_id is required"
	}
	if _, err := models.ParseTier(req.Tier); err != nil {
		return "tier must be one of free, essential, premium, coaching"
	}
	for _, addOn := range req.AddOns {
		if strings.TrimSpace(addOn) == "" {
			return "addons must not contain empty values"
		}
	}
	if req.Language != "" {
		if _, ok := allowedLanguages[req.Language]; !ok {
			return "language must be en or hi"
		}
	}
	return ""
}

func validateVerifyPaymentRequest(req verifyPaymentRequest) string {
	if strings.TrimSpace(req.OrderID) == "" {
		return "order_id is required"
	}
	if strings.TrimSpace(req.GatewayPaymentID) == "" {
		return "gateway_payment_id is required"
	}
	if strings.TrimSpace(req.GatewaySignature) == "" {
		return "gateway_signature is required"
	}
	return ""
}

func validateAdminLoginRequest(req adminLoginRequest) string {
	if strings.TrimSpace(req.Email) == "" {
		return "email is required"
	}
	if req.Password == "" {
		return "password is required"
	}
	return ""
}
