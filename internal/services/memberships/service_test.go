package memberships

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bidaclub/backend/internal/domain/enums"
	"github.com/bidaclub/backend/internal/repo/postgres"
)

type stubStore struct {
	upserts []postgres.MembershipRecord
	byUser  map[string]postgres.MembershipRecord
	findErr error
}

func (s *stubStore) Upsert(
	_ context.Context,
	userID, membershipType, transactionRef string,
	startDate, endDate time.Time,
) (postgres.MembershipRecord, error) {
	ref := transactionRef
	rec := postgres.MembershipRecord{
		UserID:         userID,
		MembershipType: membershipType,
		StartDate:      startDate,
		EndDate:        endDate,
		Status:         "active",
		TransactionRef: &ref,
		UpdatedAt:      endDate,
	}
	s.upserts = append(s.upserts, rec)
	if s.byUser == nil {
		s.byUser = map[string]postgres.MembershipRecord{}
	}
	s.byUser[userID] = rec
	return rec, nil
}

func (s *stubStore) FindByUser(_ context.Context, userID string) (postgres.MembershipRecord, error) {
	if s.findErr != nil {
		return postgres.MembershipRecord{}, s.findErr
	}
	rec, ok := s.byUser[userID]
	if !ok {
		return postgres.MembershipRecord{}, postgres.ErrMembershipNotFound
	}
	return rec, nil
}

func TestUpgradeGrantsThirtyDayWindow(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, 30*24*time.Hour)
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	membership, err := svc.Upgrade(context.Background(), "u1", enums.MembershipPlanPremium, "BIDA-REF-1")
	if err != nil {
		t.Fatalf("Upgrade() error = %v", err)
	}
	if membership.MembershipType != enums.MembershipPlanPremium {
		t.Fatalf("Upgrade() plan = %q, want premium", membership.MembershipType)
	}
	if !membership.StartDate.Equal(fixed) {
		t.Fatalf("Upgrade() start = %v, want %v", membership.StartDate, fixed)
	}
	if want := fixed.Add(30 * 24 * time.Hour); !membership.EndDate.Equal(want) {
		t.Fatalf("Upgrade() end = %v, want %v", membership.EndDate, want)
	}
	if membership.Status != "active" {
		t.Fatalf("Upgrade() status = %q, want active", membership.Status)
	}
	if len(store.upserts) != 1 {
		t.Fatalf("Upgrade() upserts = %d, want 1", len(store.upserts))
	}
}

func TestUpgradeReplacesExistingWindow(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, 30*24*time.Hour)

	if _, err := svc.Upgrade(context.Background(), "u1", enums.MembershipPlanPremium, "BIDA-REF-1"); err != nil {
		t.Fatalf("Upgrade() error = %v", err)
	}
	second, err := svc.Upgrade(context.Background(), "u1", enums.MembershipPlanClubPremium, "BIDA-REF-2")
	if err != nil {
		t.Fatalf("Upgrade() error = %v", err)
	}

	got, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.MembershipType != enums.MembershipPlanClubPremium {
		t.Fatalf("Get() plan = %q, want club_premium after replacement", got.MembershipType)
	}
	if !got.EndDate.Equal(second.EndDate) {
		t.Fatalf("Get() end = %v, want %v", got.EndDate, second.EndDate)
	}
}

func TestUpgradeRejectsUnknownPlan(t *testing.T) {
	svc := NewService(&stubStore{}, 30*24*time.Hour)

	if _, err := svc.Upgrade(context.Background(), "u1", enums.MembershipPlan("gold"), "ref"); !errors.Is(err, ErrValidation) {
		t.Fatalf("Upgrade() error = %v, want ErrValidation", err)
	}
	if _, err := svc.Upgrade(context.Background(), " ", enums.MembershipPlanPremium, "ref"); !errors.Is(err, ErrValidation) {
		t.Fatalf("Upgrade() error = %v, want ErrValidation", err)
	}
}

func TestGetMapsMissingMembership(t *testing.T) {
	svc := NewService(&stubStore{}, 30*24*time.Hour)

	if _, err := svc.Get(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestGetMarksLapsedWindowExpired(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, 30*24*time.Hour)
	grantedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return grantedAt }

	if _, err := svc.Upgrade(context.Background(), "u1", enums.MembershipPlanPremium, "ref"); err != nil {
		t.Fatalf("Upgrade() error = %v", err)
	}

	svc.now = func() time.Time { return grantedAt.Add(31 * 24 * time.Hour) }
	got, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != "expired" {
		t.Fatalf("Get() status = %q, want expired", got.Status)
	}
}
