package models

import "time"

type Report struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	Filename    string    `json:"filename"`
	PageCount   int       `json:"page_count"`
	StorageURL  string    `json:"storage_url"`
	GeneratedAt time.Time `json:"generated_at"`
}
