// Package plugin provides an extensible plugin system for Recur.
// Plugins hook into lifecycle events to extend functionality; hook errors
// are logged and never change the outcome of the operation that fired them.
package plugin

import (
	"context"

	"github.com/xraph/recur/payment"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the engine is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Subscription lifecycle hooks
// ──────────────────────────────────────────────────

// OnSubscriptionCreated is called when a new subscription is created.
type OnSubscriptionCreated interface {
	Plugin
	OnSubscriptionCreated(ctx context.Context, sub *subscription.Subscription) error
}

// OnSubscriptionCanceled is called when a subscription is cancelled.
type OnSubscriptionCanceled interface {
	Plugin
	OnSubscriptionCanceled(ctx context.Context, sub *subscription.Subscription) error
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentExecuted is called after a payment settles and is recorded.
type OnPaymentExecuted interface {
	Plugin
	OnPaymentExecuted(ctx context.Context, sub *subscription.Subscription, rec *payment.Record) error
}

// OnPaymentFailed is called when a payment attempt fails after passing the
// lifecycle checks (insufficient balance, transfer or bookkeeping failure).
type OnPaymentFailed interface {
	Plugin
	OnPaymentFailed(ctx context.Context, subscriptionID uint64, err error) error
}

// ──────────────────────────────────────────────────
// Administrative hooks
// ──────────────────────────────────────────────────

// OnRateUpdated is called when the conversion rate changes.
type OnRateUpdated interface {
	Plugin
	OnRateUpdated(ctx context.Context, old, updated types.Rate, height uint64) error
}

// OnPauseToggled is called when the pause flag flips.
type OnPauseToggled interface {
	Plugin
	OnPauseToggled(ctx context.Context, paused bool) error
}
