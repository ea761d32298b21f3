package models

import (
	"fmt"
	"time"
)

type Tier string

const (
	TierFree      Tier = "free"
	TierEssential Tier = "essential"
	TierPremium   Tier = "premium"
	TierCoaching  Tier = "coaching"
)

var tierRanks = map[Tier]int{
	TierFree:      0,
	TierEssential: 1,
	TierPremium:   2,
	TierCoaching:  3,
}

// Rank returns the tier's position in the free < essential < premium <
// coaching ordering. Unknown tiers rank below free.
func (t Tier) Rank() int {
	rank, ok := tierRanks[t]
	if !ok {
		return -1
	}
	return rank
}

func (t Tier) AtLeast(other Tier) bool {
	return t.Rank() >= other.Rank()
}

func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if _, ok := tierRanks[t]; !ok {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}

const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

type Order struct {
	ID             string    `json:"id"`
	SubmissionID   string    `json:"submission_id"`
	Tier           Tier      `json:"tier"`
	AddOns         []string  `json:"addons"`
	AmountPaise    int64     `json:"amount_paise"`
	Currency       string    `json:"currency"`
	GatewayOrderID string    `json:"gateway_order_id"`
	Status         string    `json:"status"`
	Language       string    `json:"language"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ReportConfiguration is the purchase-time input to report composition.
type ReportConfiguration struct {
	Tier        Tier      `json:"tier"`
	AddOns      []string  `json:"addons"`
	OrderID     string    `json:"order_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Language    string    `json:"language"`
}
