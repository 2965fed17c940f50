package dto

import "time"

type MembershipResponse struct {
	UserID         string    `json:"user_id"`
	MembershipType string    `json:"membership_type"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Status         string    `json:"status"`
	UpdatedAt      time.Time `json:"updated_at"`
}
