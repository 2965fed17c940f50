package payments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bidaclub/backend/internal/domain/enums"
	"github.com/bidaclub/backend/internal/domain/model"
	"github.com/bidaclub/backend/internal/infra/vnpay"
	"github.com/bidaclub/backend/internal/repo/postgres"
	"github.com/bidaclub/backend/internal/services/events"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("payment transaction not found")
)

// RateLimitedError tells the caller how long to back off before starting
// another payment attempt.
type RateLimitedError struct {
	RetryAfterSec int64
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %ds", e.RetryAfterSec)
}

type TransactionStore interface {
	CreatePending(
		ctx context.Context,
		txnRef, userID string,
		amount int64,
		currency, paymentMethod, membershipPlan string,
	) (postgres.PaymentTransactionRecord, error)
	FindByRef(ctx context.Context, txnRef string) (postgres.PaymentTransactionRecord, error)
	FinalizeByRef(
		ctx context.Context,
		txnRef, status, gatewayCode, gatewayTxnNo string,
	) (postgres.PaymentTransactionRecord, bool, error)
}

type Gateway interface {
	BuildPaymentURL(req vnpay.PaymentRequest) (string, error)
	VerifyCallback(query url.Values) (vnpay.CallbackData, error)
}

type MembershipUpgrader interface {
	Upgrade(ctx context.Context, userID string, plan enums.MembershipPlan, transactionRef string) (model.Membership, error)
}

// CreateLimiter caps payment creation per user. retryAfterSec is only
// meaningful when allowed is false.
type CreateLimiter interface {
	AllowPaymentCreate(ctx context.Context, userID string) (retryAfterSec int64, allowed bool, err error)
}

// ReceiptArchiver keeps a copy of verified gateway callbacks for dispute
// handling. Failures never affect the payment outcome.
type ReceiptArchiver interface {
	Archive(ctx context.Context, txnRef string, params map[string]string) error
}

type Config struct {
	Currency            string
	PremiumPriceVND     int64
	ClubPremiumPriceVND int64
	FrontendResultURL   string
}

type Service struct {
	store       TransactionStore
	gateway     Gateway
	memberships MembershipUpgrader
	cfg         Config
	log         *zap.Logger
	now         func() time.Time

	limiter  CreateLimiter
	emitter  *events.Emitter
	receipts ReceiptArchiver
}

func NewService(
	store TransactionStore,
	gateway Gateway,
	memberships MembershipUpgrader,
	cfg Config,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Currency == "" {
		cfg.Currency = "VND"
	}

	return &Service{
		store:       store,
		gateway:     gateway,
		memberships: memberships,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// AttachLimiter enables per-user creation throttling. Without it every
// create is allowed.
func (s *Service) AttachLimiter(limiter CreateLimiter) {
	s.limiter = limiter
}

func (s *Service) AttachEmitter(emitter *events.Emitter) {
	s.emitter = emitter
}

func (s *Service) AttachReceipts(receipts ReceiptArchiver) {
	s.receipts = receipts
}

type CreatePaymentInput struct {
	UserID   string
	Plan     string
	Amount   int64 // 0 means the plan's list price
	ClientIP string
}

type CreatePaymentResult struct {
	Transaction model.PaymentTransaction
	PaymentURL  string
}

// CreatePayment persists a pending transaction and returns the signed
// gateway URL for it. The row is written before the URL is built, so a
// callback can never arrive for a ref the store has not seen.
func (s *Service) CreatePayment(ctx context.Context, input CreatePaymentInput) (CreatePaymentResult, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return CreatePaymentResult{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	plan := enums.MembershipPlan(strings.ToLower(strings.TrimSpace(input.Plan)))
	amount, err := s.planAmount(plan, input.Amount)
	if err != nil {
		return CreatePaymentResult{}, err
	}

	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowPaymentCreate(ctx, userID)
		if err != nil {
			return CreatePaymentResult{}, fmt.Errorf("check payment rate limit: %w", err)
		}
		if !allowed {
			return CreatePaymentResult{}, &RateLimitedError{RetryAfterSec: retryAfter}
		}
	}

	now := s.now().UTC()
	txnRef := GenerateRef(userID, now)

	rec, err := s.store.CreatePending(ctx, txnRef, userID, amount, s.cfg.Currency, "vnpay", string(plan))
	if err != nil {
		return CreatePaymentResult{}, fmt.Errorf("create pending transaction: %w", err)
	}

	paymentURL, err := s.gateway.BuildPaymentURL(vnpay.PaymentRequest{
		TxnRef:    txnRef,
		Amount:    amount,
		Currency:  s.cfg.Currency,
		OrderInfo: fmt.Sprintf("Nang cap hoi vien %s cho user %s", plan, userID),
		ClientIP:  input.ClientIP,
		CreatedAt: now,
	})
	if err != nil {
		return CreatePaymentResult{}, fmt.Errorf("build payment url: %w", err)
	}

	paymentsCreatedTotal.Inc()
	s.emitter.Emit(ctx, events.NamePaymentCreated, userID, map[string]any{
		"txn_ref": txnRef,
		"plan":    string(plan),
		"amount":  amount,
	})
	s.log.Info("payment created",
		zap.String("txn_ref", txnRef),
		zap.String("user_id", userID),
		zap.String("plan", string(plan)),
		zap.Int64("amount", amount),
	)

	return CreatePaymentResult{
		Transaction: toTransaction(rec),
		PaymentURL:  paymentURL,
	}, nil
}

func (s *Service) planAmount(plan enums.MembershipPlan, requested int64) (int64, error) {
	if requested < 0 {
		return 0, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}

	var listPrice int64
	switch plan {
	case enums.MembershipPlanPremium:
		listPrice = s.cfg.PremiumPriceVND
	case enums.MembershipPlanClubPremium:
		listPrice = s.cfg.ClubPremiumPriceVND
	default:
		return 0, fmt.Errorf("%w: unknown membership plan %q", ErrValidation, plan)
	}

	if requested > 0 {
		return requested, nil
	}
	if listPrice <= 0 {
		return 0, fmt.Errorf("%w: no price configured for plan %q", ErrValidation, plan)
	}
	return listPrice, nil
}

type CallbackResult struct {
	Status      string // success, failed or error
	TxnRef      string
	RedirectURL string
}

// HandleCallback authenticates and settles a gateway return. A bad or
// missing signature is the only hard failure: the caller gets the error
// and no redirect, and nothing is written. Everything after a verified
// signature resolves into a redirect, with status=error covering refs the
// store cannot settle.
func (s *Service) HandleCallback(ctx context.Context, query url.Values) (CallbackResult, error) {
	data, err := s.gateway.VerifyCallback(query)
	if err != nil {
		callbacksRejectedTotal.Inc()
		s.emitter.Emit(ctx, events.NameCallbackRejected, "", map[string]any{
			"txn_ref": query.Get("vnp_TxnRef"),
			"reason":  err.Error(),
		})
		s.log.Warn("payment callback rejected",
			zap.String("txn_ref", query.Get("vnp_TxnRef")),
			zap.Error(err),
		)
		return CallbackResult{}, err
	}

	status := enums.PaymentStatusFailed
	if data.Success() {
		status = enums.PaymentStatusSuccess
	}

	rec, changed, err := s.store.FinalizeByRef(ctx, data.TxnRef, string(status), data.ResponseCode, data.TransactionNo)
	if err != nil {
		if errors.Is(err, postgres.ErrTransactionNotFound) {
			s.log.Warn("callback for unknown transaction ref", zap.String("txn_ref", data.TxnRef))
		} else {
			s.log.Error("finalize transaction failed", zap.String("txn_ref", data.TxnRef), zap.Error(err))
		}
		return s.callbackResult("error", data.TxnRef), nil
	}

	if rec.Status == string(enums.PaymentStatusSuccess) {
		callbacksVerifiedSuccess.Inc()
	} else {
		callbacksVerifiedFailed.Inc()
	}
	s.emitter.Emit(ctx, events.NameCallbackVerified, rec.UserID, map[string]any{
		"txn_ref":       rec.TransactionRef,
		"status":        rec.Status,
		"response_code": data.ResponseCode,
		"replayed":      !changed,
	})

	if s.receipts != nil {
		if err := s.receipts.Archive(ctx, rec.TransactionRef, data.Params); err != nil {
			s.log.Warn("receipt archive failed", zap.String("txn_ref", rec.TransactionRef), zap.Error(err))
		}
	}

	// Only the transition grants the membership. A replayed callback sees
	// changed=false and must not touch the membership again.
	if changed && rec.Status == string(enums.PaymentStatusSuccess) {
		if _, err := s.memberships.Upgrade(ctx, rec.UserID, enums.MembershipPlan(rec.MembershipPlan), rec.TransactionRef); err != nil {
			membershipUpgradeFailuresTotal.Inc()
			s.emitter.Emit(ctx, events.NameMembershipUpgradeFailed, rec.UserID, map[string]any{
				"txn_ref": rec.TransactionRef,
				"plan":    rec.MembershipPlan,
				"error":   err.Error(),
			})
			// The payment is settled; the grant must be repaired out of
			// band rather than failing the redirect.
			s.log.Error("membership upgrade failed after paid transaction",
				zap.String("txn_ref", rec.TransactionRef),
				zap.String("user_id", rec.UserID),
				zap.Error(err),
			)
		} else {
			membershipUpgradesTotal.Inc()
		}
	}

	s.log.Info("payment callback settled",
		zap.String("txn_ref", rec.TransactionRef),
		zap.String("status", rec.Status),
		zap.Bool("replayed", !changed),
	)

	return s.callbackResult(rec.Status, rec.TransactionRef), nil
}

// GetPayment returns the caller's transaction. Refs belonging to other
// users read as not found.
func (s *Service) GetPayment(ctx context.Context, userID, txnRef string) (model.PaymentTransaction, error) {
	userID = strings.TrimSpace(userID)
	txnRef = strings.TrimSpace(txnRef)
	if userID == "" || txnRef == "" {
		return model.PaymentTransaction{}, fmt.Errorf("%w: user id and transaction ref are required", ErrValidation)
	}

	rec, err := s.store.FindByRef(ctx, txnRef)
	if err != nil {
		if errors.Is(err, postgres.ErrTransactionNotFound) {
			return model.PaymentTransaction{}, ErrNotFound
		}
		return model.PaymentTransaction{}, fmt.Errorf("get payment: %w", err)
	}
	if rec.UserID != userID {
		return model.PaymentTransaction{}, ErrNotFound
	}

	return toTransaction(rec), nil
}

func (s *Service) callbackResult(status, txnRef string) CallbackResult {
	u := s.cfg.FrontendResultURL +
		"?status=" + url.QueryEscape(status) +
		"&ref=" + url.QueryEscape(txnRef)
	return CallbackResult{
		Status:      status,
		TxnRef:      txnRef,
		RedirectURL: u,
	}
}

func toTransaction(rec postgres.PaymentTransactionRecord) model.PaymentTransaction {
	txn := model.PaymentTransaction{
		ID:             rec.ID,
		TransactionRef: rec.TransactionRef,
		UserID:         rec.UserID,
		Amount:         rec.Amount,
		Currency:       rec.Currency,
		PaymentMethod:  rec.PaymentMethod,
		MembershipPlan: rec.MembershipPlan,
		Status:         enums.PaymentStatus(rec.Status),
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
	if rec.GatewayCode != nil {
		txn.GatewayCode = *rec.GatewayCode
	}
	if rec.GatewayTxnNo != nil {
		txn.GatewayTxnNo = *rec.GatewayTxnNo
	}
	return txn
}
