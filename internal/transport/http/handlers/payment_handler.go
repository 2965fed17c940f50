package handlers

import (
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bidaclub/backend/internal/infra/vnpay"
	authsvc "github.com/bidaclub/backend/internal/services/auth"
	paymentsvc "github.com/bidaclub/backend/internal/services/payments"
	"github.com/bidaclub/backend/internal/transport/http/dto"
	httperrors "github.com/bidaclub/backend/internal/transport/http/errors"
)

type PaymentHandler struct {
	payments *paymentsvc.Service
}

func NewPaymentHandler(payments *paymentsvc.Service) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	var req dto.PaymentCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.payments.CreatePayment(r.Context(), paymentsvc.CreatePaymentInput{
		UserID:   identity.UserID,
		Plan:     req.Plan,
		Amount:   req.Amount,
		ClientIP: clientIP(r),
	})
	if err != nil {
		var rateErr *paymentsvc.RateLimitedError
		switch {
		case errors.Is(err, paymentsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid payment create payload")
		case errors.As(err, &rateErr):
			w.Header().Set("Retry-After", strconv.FormatInt(rateErr.RetryAfterSec, 10))
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "RATE_LIMITED",
				Message:       "too many payment attempts",
				RetryAfterSec: rateErr.RetryAfterSec,
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to create payment")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PaymentCreateResponse{
		TransactionRef: result.Transaction.TransactionRef,
		PaymentURL:     result.PaymentURL,
		Amount:         result.Transaction.Amount,
		Currency:       result.Transaction.Currency,
		Status:         string(result.Transaction.Status),
	})
}

// Callback receives the browser redirect back from the gateway. A bad
// signature gets a 400 and no redirect; everything else resolves to a 302
// onto the frontend result page.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	result, err := h.payments.HandleCallback(r.Context(), r.URL.Query())
	if err != nil {
		switch {
		case errors.Is(err, vnpay.ErrMissingSignature):
			writeBadRequest(w, "SIGNATURE_MISSING", "callback signature is missing")
		case errors.Is(err, vnpay.ErrSignatureMismatch):
			writeBadRequest(w, "SIGNATURE_INVALID", "callback signature verification failed")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process callback")
		}
		return
	}

	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	txn, err := h.payments.GetPayment(r.Context(), identity.UserID, chi.URLParam(r, "ref"))
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid payment lookup")
		case errors.Is(err, paymentsvc.ErrNotFound):
			writeNotFound(w, "PAYMENT_NOT_FOUND", "payment not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load payment")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PaymentResponse{
		TransactionRef: txn.TransactionRef,
		Amount:         txn.Amount,
		Currency:       txn.Currency,
		PaymentMethod:  txn.PaymentMethod,
		MembershipPlan: txn.MembershipPlan,
		Status:         string(txn.Status),
		GatewayCode:    txn.GatewayCode,
		GatewayTxnNo:   txn.GatewayTxnNo,
		CreatedAt:      txn.CreatedAt,
		UpdatedAt:      txn.UpdatedAt,
	})
}

func clientIP(r *http.Request) string {
	// chi's RealIP middleware rewrites RemoteAddr from the proxy headers.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
