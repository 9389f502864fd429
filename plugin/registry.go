package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/xraph/recur/payment"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery so emitting an event touches only the
// plugins that implement its hook.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                 []OnInit
	onShutdown             []OnShutdown
	onSubscriptionCreated  []OnSubscriptionCreated
	onSubscriptionCanceled []OnSubscriptionCanceled
	onPaymentExecuted      []OnPaymentExecuted
	onPaymentFailed        []OnPaymentFailed
	onRateUpdated          []OnRateUpdated
	onPauseToggled         []OnPauseToggled
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{logger: slog.Default()}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnSubscriptionCreated); ok {
		r.onSubscriptionCreated = append(r.onSubscriptionCreated, v)
	}
	if v, ok := p.(OnSubscriptionCanceled); ok {
		r.onSubscriptionCanceled = append(r.onSubscriptionCanceled, v)
	}
	if v, ok := p.(OnPaymentExecuted); ok {
		r.onPaymentExecuted = append(r.onPaymentExecuted, v)
	}
	if v, ok := p.(OnPaymentFailed); ok {
		r.onPaymentFailed = append(r.onPaymentFailed, v)
	}
	if v, ok := p.(OnRateUpdated); ok {
		r.onRateUpdated = append(r.onRateUpdated, v)
	}
	if v, ok := p.(OnPauseToggled); ok {
		r.onPauseToggled = append(r.onPauseToggled, v)
	}

	return nil
}

// Plugins returns the registered plugins in registration order.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

func (r *Registry) hookErr(name, hook string, err error) {
	if err != nil {
		r.logger.Error("plugin hook failed", "plugin", name, "hook", hook, "error", err)
	}
}

// EmitInit notifies OnInit plugins.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.onInit {
		r.hookErr(p.Name(), "OnInit", p.OnInit(ctx, engine))
	}
}

// EmitShutdown notifies OnShutdown plugins.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.onShutdown {
		r.hookErr(p.Name(), "OnShutdown", p.OnShutdown(ctx))
	}
}

// EmitSubscriptionCreated notifies OnSubscriptionCreated plugins.
func (r *Registry) EmitSubscriptionCreated(ctx context.Context, sub *subscription.Subscription) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.onSubscriptionCreated {
		r.hookErr(p.Name(), "OnSubscriptionCreated", p.OnSubscriptionCreated(ctx, sub))
	}
}

// EmitSubscriptionCanceled notifies OnSubscriptionCanceled plugins.
func (r *Registry) EmitSubscriptionCanceled(ctx context.Context, sub *subscription.Subscription) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.onSubscriptionCanceled {
		r.hookErr(p.Name(), "OnSubscriptionCanceled", p.OnSubscriptionCanceled(ctx, sub))
	}
}

// EmitPaymentExecuted notifies OnPaymentExecuted plugins.
func (r *Registry) EmitPaymentExecuted(ctx context.Context, sub *subscription.Subscription, rec *payment.Record) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.onPaymentExecuted {
		r.hookErr(p.Name(), "OnPaymentExecuted", p.OnPaymentExecuted(ctx, sub, rec))
	}
}

// EmitPaymentFailed notifies OnPaymentFailed plugins.
func (r *Registry) EmitPaymentFailed(ctx context.Context, subscriptionID uint64, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.onPaymentFailed {
		r.hookErr(p.Name(), "OnPaymentFailed", p.OnPaymentFailed(ctx, subscriptionID, err))
	}
}

// EmitRateUpdated notifies OnRateUpdated plugins.
func (r *Registry) EmitRateUpdated(ctx context.Context, old, updated types.Rate, height uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.onRateUpdated {
		r.hookErr(p.Name(), "OnRateUpdated", p.OnRateUpdated(ctx, old, updated, height))
	}
}

// EmitPauseToggled notifies OnPauseToggled plugins.
func (r *Registry) EmitPauseToggled(ctx context.Context, paused bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.onPauseToggled {
		r.hookErr(p.Name(), "OnPauseToggled", p.OnPauseToggled(ctx, paused))
	}
}
