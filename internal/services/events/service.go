package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bidaclub/backend/internal/repo/postgres"
)

// Event names recorded on the payment funnel.
const (
	NamePaymentCreated          = "payment_created"
	NameCallbackVerified        = "callback_verified"
	NameCallbackRejected        = "callback_rejected"
	NameMembershipUpgradeFailed = "membership_upgrade_failed"
)

type EventStore interface {
	Insert(ctx context.Context, event postgres.PaymentEventRecord) error
}

// Emitter records funnel events. Every method is best effort: a failed
// insert is logged and never propagated to the payment path.
type Emitter struct {
	store EventStore
	log   *zap.Logger
	now   func() time.Time
}

func NewEmitter(store EventStore, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}

	return &Emitter{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

func (e *Emitter) Emit(ctx context.Context, name, userID string, props map[string]any) {
	if e == nil || e.store == nil {
		return
	}

	err := e.store.Insert(ctx, postgres.PaymentEventRecord{
		Name:       name,
		UserID:     userID,
		Props:      props,
		OccurredAt: e.now().UTC(),
	})
	if err != nil {
		e.log.Warn("payment event insert failed",
			zap.String("event", name),
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
