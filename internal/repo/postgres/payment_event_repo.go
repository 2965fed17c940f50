package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentEventRepo struct {
	pool *pgxpool.Pool
}

type PaymentEventRecord struct {
	Name       string
	UserID     string
	Props      map[string]any
	OccurredAt time.Time
}

func NewPaymentEventRepo(pool *pgxpool.Pool) *PaymentEventRepo {
	return &PaymentEventRepo{pool: pool}
}

func (r *PaymentEventRepo) Insert(ctx context.Context, event PaymentEventRecord) error {
	if r.pool == nil {
		return nil
	}
	if strings.TrimSpace(event.Name) == "" {
		return fmt.Errorf("event name is required")
	}

	payload, err := json.Marshal(event.Props)
	if err != nil {
		return fmt.Errorf("marshal event props: %w", err)
	}

	var uid any
	if strings.TrimSpace(event.UserID) != "" {
		uid = event.UserID
	}

	occurredAt := event.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO payment_events (
	user_id,
	name,
	payload,
	occurred_at,
	created_at
) VALUES ($1, $2, $3::jsonb, $4, NOW())
`, uid, event.Name, string(payload), occurredAt); err != nil {
		return fmt.Errorf("insert payment event: %w", err)
	}

	return nil
}
