package models

import "time"

type AdminUser struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type TierCount struct {
	Tier  Tier `json:"tier"`
	Count int  `json:"count"`
}

type AdminStats struct {
	TotalSubmissions int         `json:"total_submissions"`
	TotalOrders      int         `json:"total_orders"`
	PaidOrders       int         `json:"paid_orders"`
	RevenuePaise     int64       `json:"revenue_paise"`
	TierBreakdown    []TierCount `json:"tier_breakdown"`
}
