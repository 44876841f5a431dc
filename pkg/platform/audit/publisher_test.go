package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landregistry/pkg/domain"
	audit "landregistry/pkg/platform/audit"
	"landregistry/pkg/platform/audit/store/memory"
	"landregistry/pkg/requestcontext"
)

var actor = domain.MustAddress("0x3333333333333333333333333333333333333333")

func TestPublisher_Emit(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), fixed)
	ctx = requestcontext.WithRequestID(ctx, "req-9")

	t.Run("fills category timestamp and request id", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		p := audit.NewPublisher(store)

		require.NoError(t, p.Emit(ctx, audit.Event{Actor: actor, Action: string(audit.EventPaymentMade), Amount: 500}))

		events, err := store.ListByActor(ctx, actor)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.CategoryCompliance, events[0].Category)
		assert.Equal(t, fixed, events[0].Timestamp)
		assert.Equal(t, "req-9", events[0].RequestID)
		assert.Equal(t, int64(500), events[0].Amount)
	})

	t.Run("compliance failures are returned", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		store.FailWith(errors.New("disk full"))
		p := audit.NewPublisher(store)

		err := p.Emit(ctx, audit.Event{Actor: actor, Action: string(audit.EventOwnershipTransferred)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "compliance audit persistence failed")
	})

	t.Run("operations failures are swallowed", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		store.FailWith(errors.New("disk full"))
		p := audit.NewPublisher(store)

		err := p.Emit(ctx, audit.Event{Actor: actor, Action: string(audit.EventSaleCreated)})
		assert.NoError(t, err)
	})

	t.Run("action is required", func(t *testing.T) {
		p := audit.NewPublisher(memory.NewInMemoryStore())
		assert.Error(t, p.Emit(ctx, audit.Event{Actor: actor}))
	})
}

func TestAuditEvent_Category(t *testing.T) {
	assert.Equal(t, audit.CategoryCompliance, audit.EventUserVerified.Category())
	assert.Equal(t, audit.CategorySecurity, audit.EventWalletConnected.Category())
	assert.Equal(t, audit.CategoryOperations, audit.EventPurchaseRequested.Category())
	assert.Equal(t, audit.CategoryOperations, audit.AuditEvent("unknown").Category())
}

func TestInMemoryStore_ListRecent(t *testing.T) {
	store := memory.NewInMemoryStore()
	ctx := context.Background()
	for _, action := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(ctx, audit.Event{Actor: actor, Action: action}))
	}

	recent, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Action)
	assert.Equal(t, "b", recent[1].Action)
}
