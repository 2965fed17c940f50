package model

import (
	"time"

	"github.com/bidaclub/backend/internal/domain/enums"
)

type PaymentTransaction struct {
	ID             int64               `json:"id"`
	TransactionRef string              `json:"transaction_ref"`
	UserID         string              `json:"user_id"`
	Amount         int64               `json:"amount"`
	Currency       string              `json:"currency"`
	PaymentMethod  string              `json:"payment_method"`
	MembershipPlan string              `json:"membership_plan"`
	Status         enums.PaymentStatus `json:"status"`
	GatewayCode    string              `json:"gateway_response_code,omitempty"`
	GatewayTxnNo   string              `json:"gateway_transaction_no,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}
