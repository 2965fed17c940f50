package memberships

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bidaclub/backend/internal/domain/enums"
	"github.com/bidaclub/backend/internal/domain/model"
	"github.com/bidaclub/backend/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("membership not found")
)

type Store interface {
	Upsert(
		ctx context.Context,
		userID, membershipType, transactionRef string,
		startDate, endDate time.Time,
	) (postgres.MembershipRecord, error)
	FindByUser(ctx context.Context, userID string) (postgres.MembershipRecord, error)
}

type Service struct {
	store    Store
	duration time.Duration
	now      func() time.Time
}

func NewService(store Store, duration time.Duration) *Service {
	if duration <= 0 {
		duration = 30 * 24 * time.Hour
	}

	return &Service{
		store:    store,
		duration: duration,
		now:      time.Now,
	}
}

// Upgrade grants the plan for one membership window starting now. A repeat
// grant for the same user replaces the previous window rather than stacking.
func (s *Service) Upgrade(ctx context.Context, userID string, plan enums.MembershipPlan, transactionRef string) (model.Membership, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.Membership{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if plan != enums.MembershipPlanPremium && plan != enums.MembershipPlanClubPremium {
		return model.Membership{}, fmt.Errorf("%w: unknown membership plan %q", ErrValidation, plan)
	}

	start := s.now().UTC()
	end := start.Add(s.duration)

	rec, err := s.store.Upsert(ctx, userID, string(plan), transactionRef, start, end)
	if err != nil {
		return model.Membership{}, fmt.Errorf("upgrade membership: %w", err)
	}

	return toModel(rec), nil
}

func (s *Service) Get(ctx context.Context, userID string) (model.Membership, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.Membership{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	rec, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, postgres.ErrMembershipNotFound) {
			return model.Membership{}, ErrNotFound
		}
		return model.Membership{}, fmt.Errorf("get membership: %w", err)
	}

	membership := toModel(rec)
	if membership.Status == "active" && !membership.EndDate.After(s.now().UTC()) {
		membership.Status = "expired"
	}

	return membership, nil
}

func toModel(rec postgres.MembershipRecord) model.Membership {
	return model.Membership{
		UserID:         rec.UserID,
		MembershipType: enums.MembershipPlan(rec.MembershipType),
		StartDate:      rec.StartDate,
		EndDate:        rec.EndDate,
		Status:         rec.Status,
		UpdatedAt:      rec.UpdatedAt,
	}
}
