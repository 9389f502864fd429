package subscription

import (
	"context"

	"github.com/xraph/recur/types"
)

// Store is the registry slice of the unified store interface.
type Store interface {
	// Create assigns the next global id to s, persists it, appends the id
	// to the subscriber's index, and bumps the subscriber's lifetime
	// creation count — all as one atomic step.
	Create(ctx context.Context, s *Subscription) error

	Get(ctx context.Context, id uint64) (*Subscription, error)

	// Cancel flips the active flag. The record, the subscriber index
	// entry, and the creation count all stay in place.
	Cancel(ctx context.Context, id uint64) error

	// CountBySubscriber returns the lifetime number of subscriptions the
	// account has created, cancelled ones included.
	CountBySubscriber(ctx context.Context, subscriber types.Account) (uint64, error)

	// IDAt returns the subscription id at the zero-based position in the
	// subscriber's creation-ordered index.
	IDAt(ctx context.Context, subscriber types.Account, index uint64) (uint64, error)
}
