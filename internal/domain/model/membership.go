package model

import (
	"time"

	"github.com/bidaclub/backend/internal/domain/enums"
)

type Membership struct {
	UserID         string               `json:"user_id"`
	MembershipType enums.MembershipPlan `json:"membership_type"`
	StartDate      time.Time            `json:"start_date"`
	EndDate        time.Time            `json:"end_date"`
	Status         string               `json:"status"`
	UpdatedAt      time.Time            `json:"updated_at"`
}
