// Package store defines the unified storage interface for all Recur
// entities.
package store

import (
	"context"

	"github.com/xraph/recur/config"
	"github.com/xraph/recur/payment"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

// Store is the unified storage interface. Instead of embedding the
// per-entity interfaces, all methods are declared explicitly to avoid
// naming conflicts.
//
// Multi-write methods (CreateSubscription, ApplyPayment) must be atomic
// within a backend: every write takes effect or none does. The engine
// serializes mutating operations, so backends do not need cross-call
// transaction isolation — only all-or-nothing application of each call.
type Store interface {
	// Subscription registry
	CreateSubscription(ctx context.Context, s *subscription.Subscription) error
	GetSubscription(ctx context.Context, id uint64) (*subscription.Subscription, error)
	CancelSubscription(ctx context.Context, id uint64) error
	CountBySubscriber(ctx context.Context, subscriber types.Account) (uint64, error)
	SubscriptionIDAt(ctx context.Context, subscriber types.Account, index uint64) (uint64, error)

	// SubscriptionTotal returns the lifetime number of subscriptions ever
	// created, which is also the last assigned id.
	SubscriptionTotal(ctx context.Context) (uint64, error)

	// Payment ledger
	ApplyPayment(ctx context.Context, sub *subscription.Subscription, rec *payment.Record) error
	GetPayment(ctx context.Context, subscriptionID, sequence uint64) (*payment.Record, error)
	MerchantEarnings(ctx context.Context, merchant types.Account) (types.SettleAmount, error)

	// Global configuration
	GetConfig(ctx context.Context) (*config.Config, error)
	PutConfig(ctx context.Context, cfg *config.Config) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
