package dto

import "time"

type PaymentCreateRequest struct {
	Plan   string `json:"plan"`
	Amount int64  `json:"amount,omitempty"`
}

type PaymentCreateResponse struct {
	TransactionRef string `json:"transaction_ref"`
	PaymentURL     string `json:"payment_url"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`
}

type PaymentResponse struct {
	TransactionRef string    `json:"transaction_ref"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	PaymentMethod  string    `json:"payment_method"`
	MembershipPlan string    `json:"membership_plan"`
	Status         string    `json:"status"`
	GatewayCode    string    `json:"gateway_response_code,omitempty"`
	GatewayTxnNo   string    `json:"gateway_transaction_no,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
