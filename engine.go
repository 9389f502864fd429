package recur

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/xraph/recur/config"
	"github.com/xraph/recur/payment"
	"github.com/xraph/recur/plugin"
	"github.com/xraph/recur/settle"
	"github.com/xraph/recur/store"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

// Engine is the billing state machine. It owns subscription lifecycle,
// rate-locked pricing, fee splitting, and the bookkeeping that keeps the
// registry, the payment ledger, and the merchant accumulators consistent.
//
// The host collaborators — settlement bank, height clock, caller identity —
// are injected; the engine consumes them and implements none of them.
type Engine struct {
	store   store.Store
	bank    settle.Bank
	clock   Clock
	admin   types.Account
	plugins *plugin.Registry
	logger  *slog.Logger

	// mu serializes mutating operations. The original host executes one
	// operation at a time to completion; the sequencing invariants (gap-
	// free payment sequences, single cap check) depend on that, so the
	// concurrent reimplementation restores it here.
	mu sync.Mutex

	// Seed values for a fresh store, applied once in Start.
	seedRate      types.Rate
	seedRecipient types.Account
}

// New creates an Engine. The administrator identity is fixed here and
// never changes.
func New(s store.Store, bank settle.Bank, clock Clock, admin types.Account, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		bank:     bank,
		clock:    clock,
		admin:    admin,
		plugins:  plugin.NewRegistry(),
		logger:   slog.Default(),
		seedRate: types.DefaultRate,
	}

	for _, opt := range opts {
		opt(e)
	}
	if e.seedRecipient.IsZero() {
		e.seedRecipient = admin
	}

	return e
}

// Start migrates the store, seeds the global configuration on first run,
// and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return fmt.Errorf("recur: migrate store: %w", err)
	}

	if _, err := e.store.GetConfig(ctx); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("recur: read config: %w", err)
		}
		height, err := e.clock.Height(ctx)
		if err != nil {
			return fmt.Errorf("recur: read height: %w", err)
		}
		cfg := &config.Config{
			Rate:          e.seedRate,
			FeeRecipient:  e.seedRecipient,
			RateUpdatedAt: height,
		}
		if err := e.store.PutConfig(ctx, cfg); err != nil {
			return fmt.Errorf("recur: seed config: %w", err)
		}
	}

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("recur engine started",
		"admin", e.admin,
		"fee_bps", types.FeeBPS,
	)

	return nil
}

// Stop shuts the engine down.
func (e *Engine) Stop() error {
	e.plugins.EmitShutdown(context.Background())
	return e.store.Close()
}

// ──────────────────────────────────────────────────
// Subscription lifecycle
// ──────────────────────────────────────────────────

// CreateSubscription opens a recurring agreement: subscriber pays merchant
// price base units every interval heights, first payment due one full
// interval after creation. The subscriber is the caller.
func (e *Engine) CreateSubscription(ctx context.Context, subscriber, merchant types.Account, price types.BaseAmount, interval uint64) (*subscription.Subscription, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg, err := e.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Paused {
		return nil, ErrPaused
	}
	if subscriber == merchant {
		return nil, ErrSelfSubscription
	}
	if price < types.MinSubscriptionAmount || price > types.MaxSubscriptionAmount {
		return nil, ErrInvalidAmount
	}
	if interval < types.MinInterval {
		return nil, ErrInvalidInterval
	}

	created, err := e.store.CountBySubscriber(ctx, subscriber)
	if err != nil {
		return nil, err
	}
	if created >= types.MaxSubscriptionsPerAccount {
		return nil, ErrSubscriberCapExceeded
	}

	height, err := e.clock.Height(ctx)
	if err != nil {
		return nil, fmt.Errorf("recur: read height: %w", err)
	}

	sub := &subscription.Subscription{
		Subscriber: subscriber,
		Merchant:   merchant,
		Price:      price,
		Interval:   interval,
		Active:     true,
		CreatedAt:  height,
		NextDue:    height + interval,
	}
	if err := e.store.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	e.plugins.EmitSubscriptionCreated(ctx, sub)

	e.logger.Debug("subscription created",
		"id", sub.ID,
		"subscriber", subscriber,
		"merchant", merchant,
		"price", price,
		"interval", interval,
		"next_due", sub.NextDue,
	)

	return sub, nil
}

// Cancel deactivates a subscription. Subscriber-only, terminal: a second
// cancel is rejected with ErrAlreadyInactive rather than silently accepted
// so callers can detect programming mistakes.
func (e *Engine) Cancel(ctx context.Context, caller types.Account, id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sub, err := e.store.GetSubscription(ctx, id)
	if err != nil {
		return err
	}

	cfg, err := e.store.GetConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Paused {
		return ErrPaused
	}
	if caller != sub.Subscriber {
		return ErrUnauthorized
	}
	if !sub.Active {
		return ErrAlreadyInactive
	}

	if err := e.store.CancelSubscription(ctx, id); err != nil {
		return err
	}

	sub.Active = false
	e.plugins.EmitSubscriptionCanceled(ctx, sub)

	e.logger.Debug("subscription cancelled", "id", id, "subscriber", caller)

	return nil
}

// ──────────────────────────────────────────────────
// Payment execution
// ──────────────────────────────────────────────────

// Pay executes one billing cycle. Payments are never auto-triggered: an
// external agent invokes Pay once the due height passes, and a premature
// call fails cleanly with ErrPaymentNotDue — it never double charges.
//
// The price is converted at the rate in effect now, split into a platform
// fee and a merchant net, and both legs settle through the bank as one
// all-or-nothing unit before any bookkeeping is written.
func (e *Engine) Pay(ctx context.Context, id uint64) (*payment.Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sub, err := e.store.GetSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	cfg, err := e.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Paused {
		return nil, ErrPaused
	}
	if !sub.Active {
		return nil, ErrSubscriptionInactive
	}

	height, err := e.clock.Height(ctx)
	if err != nil {
		return nil, fmt.Errorf("recur: read height: %w", err)
	}
	if height < sub.NextDue {
		return nil, ErrPaymentNotDue
	}

	quote, err := types.Price(sub.Price, cfg.Rate)
	if err != nil {
		return nil, ErrInvalidAmount
	}

	balance, err := e.bank.Balance(ctx, sub.Subscriber)
	if err != nil {
		return nil, fmt.Errorf("recur: read balance: %w", err)
	}
	if balance < quote.Amount {
		e.plugins.EmitPaymentFailed(ctx, id, ErrInsufficientBalance)
		return nil, ErrInsufficientBalance
	}

	err = e.bank.Transfer(ctx, sub.Subscriber,
		settle.Leg{To: sub.Merchant, Amount: quote.Net},
		settle.Leg{To: cfg.FeeRecipient, Amount: quote.Fee},
	)
	if err != nil {
		e.plugins.EmitPaymentFailed(ctx, id, err)
		if errors.Is(err, settle.ErrInsufficientFunds) {
			return nil, ErrInsufficientBalance
		}
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	sub.Advance(height)
	rec := &payment.Record{
		SubscriptionID: id,
		Sequence:       sub.TotalPayments,
		BaseAmount:     sub.Price,
		SettleAmount:   quote.Amount,
		Rate:           cfg.Rate,
		Fee:            quote.Fee,
		Height:         height,
	}
	if err := e.store.ApplyPayment(ctx, sub, rec); err != nil {
		// Value has already moved; surface the bookkeeping failure loudly
		// instead of hiding it behind a retryable error.
		e.logger.Error("payment settled but bookkeeping failed",
			"id", id,
			"sequence", rec.Sequence,
			"error", err,
		)
		e.plugins.EmitPaymentFailed(ctx, id, err)
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	e.plugins.EmitPaymentExecuted(ctx, sub, rec)

	e.logger.Debug("payment executed",
		"id", id,
		"sequence", rec.Sequence,
		"settle_amount", quote.Amount,
		"fee", quote.Fee,
		"rate", cfg.Rate,
		"next_due", sub.NextDue,
	)

	return &payment.Receipt{
		SubscriptionID: id,
		Sequence:       rec.Sequence,
		Amount:         quote.Amount,
		Fee:            quote.Fee,
		NextDue:        sub.NextDue,
	}, nil
}

// ──────────────────────────────────────────────────
// Administrative control
// ──────────────────────────────────────────────────

// SetRate updates the conversion rate. Administrator-only; the update
// height is recorded. Already-executed payments keep the rate they locked.
func (e *Engine) SetRate(ctx context.Context, caller types.Account, rate types.Rate) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return ErrOwnerOnly
	}
	if rate == 0 {
		return ErrInvalidAmount
	}

	cfg, err := e.store.GetConfig(ctx)
	if err != nil {
		return err
	}
	height, err := e.clock.Height(ctx)
	if err != nil {
		return fmt.Errorf("recur: read height: %w", err)
	}

	old := cfg.Rate
	cfg.Rate = rate
	cfg.RateUpdatedAt = height
	if err := e.store.PutConfig(ctx, cfg); err != nil {
		return err
	}

	e.plugins.EmitRateUpdated(ctx, old, rate, height)

	e.logger.Info("conversion rate updated",
		"old", old,
		"new", rate,
		"height", height,
	)

	return nil
}

// SetFeeRecipient changes the account the platform fee settles to.
// Administrator-only.
func (e *Engine) SetFeeRecipient(ctx context.Context, caller, account types.Account) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return ErrOwnerOnly
	}

	cfg, err := e.store.GetConfig(ctx)
	if err != nil {
		return err
	}
	cfg.FeeRecipient = account
	if err := e.store.PutConfig(ctx, cfg); err != nil {
		return err
	}

	e.logger.Info("fee recipient updated", "account", account)

	return nil
}

// TogglePause flips the pause flag and returns the new state.
// Administrator-only. Pausing blocks creation, payment, and cancellation
// uniformly; queries keep working.
func (e *Engine) TogglePause(ctx context.Context, caller types.Account) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return false, ErrOwnerOnly
	}

	cfg, err := e.store.GetConfig(ctx)
	if err != nil {
		return false, err
	}
	cfg.Paused = !cfg.Paused
	if err := e.store.PutConfig(ctx, cfg); err != nil {
		return false, err
	}

	e.plugins.EmitPauseToggled(ctx, cfg.Paused)

	e.logger.Info("pause toggled", "paused", cfg.Paused)

	return cfg.Paused, nil
}

// ──────────────────────────────────────────────────
// Query surface
// ──────────────────────────────────────────────────

// Subscription fetches a subscription by id.
func (e *Engine) Subscription(ctx context.Context, id uint64) (*subscription.Subscription, error) {
	return e.store.GetSubscription(ctx, id)
}

// Payment fetches a payment record by (subscription id, sequence).
func (e *Engine) Payment(ctx context.Context, subscriptionID, sequence uint64) (*payment.Record, error) {
	return e.store.GetPayment(ctx, subscriptionID, sequence)
}

// SubscriptionCount returns the lifetime number of subscriptions the
// account has created as subscriber.
func (e *Engine) SubscriptionCount(ctx context.Context, subscriber types.Account) (uint64, error) {
	return e.store.CountBySubscriber(ctx, subscriber)
}

// SubscriptionIDAt returns the subscription id at the zero-based position
// in the subscriber's creation-ordered index.
func (e *Engine) SubscriptionIDAt(ctx context.Context, subscriber types.Account, index uint64) (uint64, error) {
	return e.store.SubscriptionIDAt(ctx, subscriber, index)
}

// MerchantEarnings returns the merchant's cumulative net settlement
// earnings, zero for accounts that never received a payment.
func (e *Engine) MerchantEarnings(ctx context.Context, merchant types.Account) (types.SettleAmount, error) {
	return e.store.MerchantEarnings(ctx, merchant)
}

// Rate returns the current conversion rate.
func (e *Engine) Rate(ctx context.Context) (types.Rate, error) {
	cfg, err := e.store.GetConfig(ctx)
	if err != nil {
		return 0, err
	}
	return cfg.Rate, nil
}

// Preview prices an arbitrary base amount at the current rate without
// touching any subscription.
func (e *Engine) Preview(ctx context.Context, base types.BaseAmount) (types.Quote, error) {
	cfg, err := e.store.GetConfig(ctx)
	if err != nil {
		return types.Quote{}, err
	}
	quote, err := types.Price(base, cfg.Rate)
	if err != nil {
		return types.Quote{}, ErrInvalidAmount
	}
	return quote, nil
}

// Payable reports whether the subscription can be paid right now: active
// and due-height reached.
func (e *Engine) Payable(ctx context.Context, id uint64) (bool, error) {
	sub, err := e.store.GetSubscription(ctx, id)
	if err != nil {
		return false, err
	}
	height, err := e.clock.Height(ctx)
	if err != nil {
		return false, fmt.Errorf("recur: read height: %w", err)
	}
	return sub.Payable(height), nil
}

// Stats returns the aggregate ledger snapshot.
func (e *Engine) Stats(ctx context.Context) (*config.Stats, error) {
	cfg, err := e.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	total, err := e.store.SubscriptionTotal(ctx)
	if err != nil {
		return nil, err
	}
	return &config.Stats{
		Subscriptions: total,
		Rate:          cfg.Rate,
		Paused:        cfg.Paused,
		RateUpdatedAt: cfg.RateUpdatedAt,
		FeeRecipient:  cfg.FeeRecipient,
	}, nil
}

// Limits returns the static configuration bounds.
func (e *Engine) Limits() types.Limits {
	return types.DefaultLimits()
}
