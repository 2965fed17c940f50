package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMembershipNotFound = errors.New("membership not found")

type MembershipRepo struct {
	pool *pgxpool.Pool
}

type MembershipRecord struct {
	UserID         string
	MembershipType string
	StartDate      time.Time
	EndDate        time.Time
	Status         string
	TransactionRef *string
	UpdatedAt      time.Time
}

func NewMembershipRepo(pool *pgxpool.Pool) *MembershipRepo {
	return &MembershipRepo{pool: pool}
}

// Upsert grants or overwrites the user's membership window. Keyed by
// user_id, so a retried grant for the same transaction lands on the same
// row instead of crediting twice.
func (r *MembershipRepo) Upsert(
	ctx context.Context,
	userID, membershipType, transactionRef string,
	startDate, endDate time.Time,
) (MembershipRecord, error) {
	if r.pool == nil {
		return MembershipRecord{}, fmt.Errorf("postgres pool is nil")
	}

	userID = strings.TrimSpace(userID)
	membershipType = strings.TrimSpace(membershipType)
	if userID == "" || membershipType == "" || !endDate.After(startDate) {
		return MembershipRecord{}, fmt.Errorf("invalid membership upsert payload")
	}

	rec, err := scanMembershipRow(r.pool.QueryRow(ctx, `
INSERT INTO memberships (
	user_id,
	membership_type,
	start_date,
	end_date,
	status,
	transaction_ref,
	updated_at
) VALUES ($1, $2, $3, $4, 'active', $5, NOW())
ON CONFLICT (user_id) DO UPDATE SET
	membership_type = EXCLUDED.membership_type,
	start_date = EXCLUDED.start_date,
	end_date = EXCLUDED.end_date,
	status = 'active',
	transaction_ref = EXCLUDED.transaction_ref,
	updated_at = NOW()
RETURNING
	user_id,
	membership_type,
	start_date,
	end_date,
	status,
	transaction_ref,
	updated_at
`, userID, membershipType, startDate.UTC(), endDate.UTC(), transactionRef))
	if err != nil {
		return MembershipRecord{}, fmt.Errorf("upsert membership: %w", err)
	}

	return rec, nil
}

func (r *MembershipRepo) FindByUser(ctx context.Context, userID string) (MembershipRecord, error) {
	if r.pool == nil {
		return MembershipRecord{}, fmt.Errorf("postgres pool is nil")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return MembershipRecord{}, fmt.Errorf("user id is required")
	}

	rec, err := scanMembershipRow(r.pool.QueryRow(ctx, `
SELECT
	user_id,
	membership_type,
	start_date,
	end_date,
	status,
	transaction_ref,
	updated_at
FROM memberships
WHERE user_id = $1
`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MembershipRecord{}, ErrMembershipNotFound
		}
		return MembershipRecord{}, fmt.Errorf("find membership by user: %w", err)
	}

	return rec, nil
}

func scanMembershipRow(row pgx.Row) (MembershipRecord, error) {
	var rec MembershipRecord
	if err := row.Scan(
		&rec.UserID,
		&rec.MembershipType,
		&rec.StartDate,
		&rec.EndDate,
		&rec.Status,
		&rec.TransactionRef,
		&rec.UpdatedAt,
	); err != nil {
		return MembershipRecord{}, err
	}
	return rec, nil
}
