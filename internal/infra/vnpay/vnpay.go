package vnpay

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	version = "2.1.0"
	command = "pay"

	// createDateLayout is the gateway's yyyyMMddHHmmss timestamp format.
	createDateLayout = "20060102150405"

	// ResponseCodeSuccess is the gateway code for a completed payment.
	// Any other code (e.g. "24", user cancelled) is a failure.
	ResponseCodeSuccess = "00"
)

var (
	ErrMissingCredentials = errors.New("vnpay merchant credentials are not configured")
	ErrMissingSignature   = errors.New("callback signature is missing")
	ErrSignatureMismatch  = errors.New("callback signature mismatch")
)

type Config struct {
	TmnCode    string
	HashSecret string
	PaymentURL string
	ReturnURL  string
	Locale     string
	OrderType  string
}

// Client builds signed redirect URLs for the hosted payment page and
// verifies the signatures the gateway sends back.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.TmnCode) == "" || strings.TrimSpace(cfg.HashSecret) == "" {
		return nil, ErrMissingCredentials
	}
	if strings.TrimSpace(cfg.PaymentURL) == "" || strings.TrimSpace(cfg.ReturnURL) == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.Locale == "" {
		cfg.Locale = "vn"
	}
	if cfg.OrderType == "" {
		cfg.OrderType = "250000"
	}

	return &Client{cfg: cfg}, nil
}

type PaymentRequest struct {
	TxnRef    string
	Amount    int64
	Currency  string
	OrderInfo string
	ClientIP  string
	CreatedAt time.Time
}

// BuildPaymentURL assembles the full signed redirect URL. The gateway
// expects amounts scaled by 100 (VND has no minor unit on the wire).
func (c *Client) BuildPaymentURL(req PaymentRequest) (string, error) {
	if req.TxnRef == "" || req.Amount <= 0 {
		return "", fmt.Errorf("invalid payment request: ref=%q amount=%d", req.TxnRef, req.Amount)
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	if req.Currency == "" {
		req.Currency = "VND"
	}
	if req.ClientIP == "" {
		req.ClientIP = "127.0.0.1"
	}

	params := map[string]string{
		"vnp_Version":    version,
		"vnp_Command":    command,
		"vnp_TmnCode":    c.cfg.TmnCode,
		"vnp_Amount":     strconv.FormatInt(req.Amount*100, 10),
		"vnp_CurrCode":   req.Currency,
		"vnp_TxnRef":     req.TxnRef,
		"vnp_OrderInfo":  req.OrderInfo,
		"vnp_OrderType":  c.cfg.OrderType,
		"vnp_Locale":     c.cfg.Locale,
		"vnp_ReturnUrl":  c.cfg.ReturnURL,
		"vnp_IpAddr":     req.ClientIP,
		"vnp_CreateDate": req.CreatedAt.Format(createDateLayout),
	}

	query := Canonicalize(params)
	signature := Sign(params, c.cfg.HashSecret)

	return c.cfg.PaymentURL + "?" + query + "&vnp_SecureHash=" + signature, nil
}

type CallbackData struct {
	TxnRef        string
	ResponseCode  string
	TransactionNo string
	Params        map[string]string
}

// Success reports whether the gateway confirmed the payment.
func (d CallbackData) Success() bool {
	return d.ResponseCode == ResponseCodeSuccess
}

// VerifyCallback authenticates the query string the gateway redirects the
// browser with. Only the signature fields are excluded from the re-signed
// set; everything else the gateway echoed stays in, exactly as it signs.
// A mismatch returns ErrSignatureMismatch and the caller must not touch
// any stored state.
func (c *Client) VerifyCallback(query url.Values) (CallbackData, error) {
	params := make(map[string]string, len(query))
	for key := range query {
		params[key] = query.Get(key)
	}

	received := params["vnp_SecureHash"]
	if strings.TrimSpace(received) == "" {
		return CallbackData{}, ErrMissingSignature
	}
	delete(params, "vnp_SecureHash")
	delete(params, "vnp_SecureHashType")

	if !VerifySignature(params, c.cfg.HashSecret, received) {
		return CallbackData{}, ErrSignatureMismatch
	}

	return CallbackData{
		TxnRef:        params["vnp_TxnRef"],
		ResponseCode:  params["vnp_ResponseCode"],
		TransactionNo: params["vnp_TransactionNo"],
		Params:        params,
	}, nil
}
