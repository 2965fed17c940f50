package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bidaclub/backend/internal/domain/enums"
)

var (
	ErrTransactionNotFound     = errors.New("payment transaction not found")
	ErrDuplicateTransactionRef = errors.New("duplicate transaction ref")
)

const statusPending = "pending"

type PaymentTransactionRepo struct {
	pool *pgxpool.Pool
}

type PaymentTransactionRecord struct {
	ID             int64
	TransactionRef string
	UserID         string
	Amount         int64
	Currency       string
	PaymentMethod  string
	MembershipPlan string
	Status         string
	GatewayCode    *string
	GatewayTxnNo   *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewPaymentTransactionRepo(pool *pgxpool.Pool) *PaymentTransactionRepo {
	return &PaymentTransactionRepo{pool: pool}
}

// CreatePending inserts the transaction in its initial state. The unique
// index on transaction_ref makes a reused ref an error rather than a
// silent second row.
func (r *PaymentTransactionRepo) CreatePending(
	ctx context.Context,
	txnRef, userID string,
	amount int64,
	currency, paymentMethod, membershipPlan string,
) (PaymentTransactionRecord, error) {
	if r.pool == nil {
		return PaymentTransactionRecord{}, fmt.Errorf("postgres pool is nil")
	}

	txnRef = strings.TrimSpace(txnRef)
	userID = strings.TrimSpace(userID)
	if txnRef == "" || userID == "" || amount <= 0 {
		return PaymentTransactionRecord{}, fmt.Errorf("invalid pending transaction payload")
	}

	rec, err := scanPaymentTransactionRow(r.pool.QueryRow(ctx, `
INSERT INTO payment_transactions (
	transaction_ref,
	user_id,
	amount,
	currency,
	payment_method,
	membership_plan,
	status,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, 'pending', NOW(), NOW())
RETURNING
	id,
	transaction_ref,
	user_id,
	amount,
	currency,
	payment_method,
	membership_plan,
	status,
	gateway_response_code,
	gateway_transaction_no,
	created_at,
	updated_at
`, txnRef, userID, amount, currency, paymentMethod, membershipPlan))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return PaymentTransactionRecord{}, ErrDuplicateTransactionRef
		}
		return PaymentTransactionRecord{}, fmt.Errorf("insert pending transaction: %w", err)
	}

	return rec, nil
}

func (r *PaymentTransactionRepo) FindByRef(ctx context.Context, txnRef string) (PaymentTransactionRecord, error) {
	if r.pool == nil {
		return PaymentTransactionRecord{}, fmt.Errorf("postgres pool is nil")
	}
	txnRef = strings.TrimSpace(txnRef)
	if txnRef == "" {
		return PaymentTransactionRecord{}, fmt.Errorf("transaction ref is required")
	}

	rec, err := scanPaymentTransactionRow(r.pool.QueryRow(ctx, `
SELECT
	id,
	transaction_ref,
	user_id,
	amount,
	currency,
	payment_method,
	membership_plan,
	status,
	gateway_response_code,
	gateway_transaction_no,
	created_at,
	updated_at
FROM payment_transactions
WHERE transaction_ref = $1
`, txnRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PaymentTransactionRecord{}, ErrTransactionNotFound
		}
		return PaymentTransactionRecord{}, fmt.Errorf("find transaction by ref: %w", err)
	}

	return rec, nil
}

// FinalizeByRef moves a pending transaction to its terminal state and
// records the gateway's evidence. Only the first call transitions the row;
// a retried callback observes the terminal state and reports changed=false.
func (r *PaymentTransactionRepo) FinalizeByRef(
	ctx context.Context,
	txnRef, status, gatewayCode, gatewayTxnNo string,
) (PaymentTransactionRecord, bool, error) {
	if r.pool == nil {
		return PaymentTransactionRecord{}, false, fmt.Errorf("postgres pool is nil")
	}
	txnRef = strings.TrimSpace(txnRef)
	if txnRef == "" || status == statusPending {
		return PaymentTransactionRecord{}, false, fmt.Errorf("invalid finalize payload")
	}

	var out PaymentTransactionRecord
	changed := false
	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		rec, err := scanPaymentTransactionRow(tx.QueryRow(txCtx, `
SELECT
	id,
	transaction_ref,
	user_id,
	amount,
	currency,
	payment_method,
	membership_plan,
	status,
	gateway_response_code,
	gateway_transaction_no,
	created_at,
	updated_at
FROM payment_transactions
WHERE transaction_ref = $1
FOR UPDATE
`, txnRef))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrTransactionNotFound
			}
			return fmt.Errorf("lock transaction for finalize: %w", err)
		}

		if enums.PaymentStatus(rec.Status).Terminal() {
			out = rec
			changed = false
			return nil
		}

		updated, err := scanPaymentTransactionRow(tx.QueryRow(txCtx, `
UPDATE payment_transactions
SET
	status = $2,
	gateway_response_code = $3,
	gateway_transaction_no = $4,
	updated_at = NOW()
WHERE transaction_ref = $1
  AND status = 'pending'
RETURNING
	id,
	transaction_ref,
	user_id,
	amount,
	currency,
	payment_method,
	membership_plan,
	status,
	gateway_response_code,
	gateway_transaction_no,
	created_at,
	updated_at
`, txnRef, status, gatewayCode, gatewayTxnNo))
		if err != nil {
			return fmt.Errorf("finalize transaction: %w", err)
		}

		out = updated
		changed = true
		return nil
	})
	if err != nil {
		return PaymentTransactionRecord{}, false, err
	}

	return out, changed, nil
}

func scanPaymentTransactionRow(row pgx.Row) (PaymentTransactionRecord, error) {
	var rec PaymentTransactionRecord
	if err := row.Scan(
		&rec.ID,
		&rec.TransactionRef,
		&rec.UserID,
		&rec.Amount,
		&rec.Currency,
		&rec.PaymentMethod,
		&rec.MembershipPlan,
		&rec.Status,
		&rec.GatewayCode,
		&rec.GatewayTxnNo,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return PaymentTransactionRecord{}, err
	}
	return rec, nil
}
