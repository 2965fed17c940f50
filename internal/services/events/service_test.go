package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bidaclub/backend/internal/repo/postgres"
)

type recorderStore struct {
	events []postgres.PaymentEventRecord
	err    error
}

func (r *recorderStore) Insert(_ context.Context, event postgres.PaymentEventRecord) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func TestEmitRecordsEvent(t *testing.T) {
	store := &recorderStore{}
	emitter := NewEmitter(store, zap.NewNop())
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	emitter.now = func() time.Time { return fixed }

	emitter.Emit(context.Background(), NamePaymentCreated, "u1", map[string]any{"txn_ref": "BIDA-1"})

	if len(store.events) != 1 {
		t.Fatalf("events recorded = %d, want 1", len(store.events))
	}
	got := store.events[0]
	if got.Name != NamePaymentCreated || got.UserID != "u1" {
		t.Fatalf("event = %+v", got)
	}
	if !got.OccurredAt.Equal(fixed) {
		t.Fatalf("OccurredAt = %v, want %v", got.OccurredAt, fixed)
	}
	if got.Props["txn_ref"] != "BIDA-1" {
		t.Fatalf("Props = %v", got.Props)
	}
}

func TestEmitSwallowsStoreErrors(t *testing.T) {
	emitter := NewEmitter(&recorderStore{err: errors.New("events table gone")}, zap.NewNop())

	// Must not panic or propagate; the payment path never sees this.
	emitter.Emit(context.Background(), NameCallbackVerified, "u1", nil)
}

func TestEmitNilEmitterIsSafe(t *testing.T) {
	var emitter *Emitter
	emitter.Emit(context.Background(), NameCallbackRejected, "", nil)
}
