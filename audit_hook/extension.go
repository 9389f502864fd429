// Package audithook bridges Recur lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit system. Callers inject a RecorderFunc adapter that
// bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"go.jetify.com/typeid/v2"

	"github.com/xraph/recur/payment"
	"github.com/xraph/recur/plugin"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                 = (*Extension)(nil)
	_ plugin.OnSubscriptionCreated  = (*Extension)(nil)
	_ plugin.OnSubscriptionCanceled = (*Extension)(nil)
	_ plugin.OnPaymentExecuted      = (*Extension)(nil)
	_ plugin.OnPaymentFailed        = (*Extension)(nil)
	_ plugin.OnRateUpdated          = (*Extension)(nil)
	_ plugin.OnPauseToggled         = (*Extension)(nil)
)

// eventIDPrefix is the TypeID prefix stamped on every audit event.
const eventIDPrefix = "aevt"

// Recorder is the interface audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one audited ledger action. The ID is a TypeID
// ("aevt_..."), K-sortable so backends get natural time-ordering.
type AuditEvent struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Recur lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided
// Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// OnSubscriptionCreated implements plugin.OnSubscriptionCreated.
func (e *Extension) OnSubscriptionCreated(ctx context.Context, sub *subscription.Subscription) error {
	return e.record(ctx, ActionSubscriptionCreated, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, strconv.FormatUint(sub.ID, 10), CategorySubscription,
		map[string]any{
			"subscriber": sub.Subscriber.String(),
			"merchant":   sub.Merchant.String(),
			"price":      uint64(sub.Price),
			"interval":   sub.Interval,
			"next_due":   sub.NextDue,
		}, "")
}

// OnSubscriptionCanceled implements plugin.OnSubscriptionCanceled.
func (e *Extension) OnSubscriptionCanceled(ctx context.Context, sub *subscription.Subscription) error {
	return e.record(ctx, ActionSubscriptionCancelled, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, strconv.FormatUint(sub.ID, 10), CategorySubscription,
		map[string]any{
			"subscriber":     sub.Subscriber.String(),
			"total_payments": sub.TotalPayments,
		}, "")
}

// OnPaymentExecuted implements plugin.OnPaymentExecuted.
func (e *Extension) OnPaymentExecuted(ctx context.Context, sub *subscription.Subscription, rec *payment.Record) error {
	return e.record(ctx, ActionPaymentExecuted, SeverityInfo, OutcomeSuccess,
		ResourcePayment, strconv.FormatUint(rec.SubscriptionID, 10), CategoryPayment,
		map[string]any{
			"sequence":      rec.Sequence,
			"base_amount":   uint64(rec.BaseAmount),
			"settle_amount": uint64(rec.SettleAmount),
			"fee":           uint64(rec.Fee),
			"rate":          uint64(rec.Rate),
			"height":        rec.Height,
			"merchant":      sub.Merchant.String(),
		}, "")
}

// OnPaymentFailed implements plugin.OnPaymentFailed.
func (e *Extension) OnPaymentFailed(ctx context.Context, subscriptionID uint64, cause error) error {
	return e.record(ctx, ActionPaymentFailed, SeverityWarning, OutcomeFailure,
		ResourcePayment, strconv.FormatUint(subscriptionID, 10), CategoryPayment,
		nil, cause.Error())
}

// OnRateUpdated implements plugin.OnRateUpdated.
func (e *Extension) OnRateUpdated(ctx context.Context, old, updated types.Rate, height uint64) error {
	return e.record(ctx, ActionRateUpdated, SeverityInfo, OutcomeSuccess,
		ResourceConfig, "", CategoryAdmin,
		map[string]any{
			"old":    uint64(old),
			"new":    uint64(updated),
			"height": height,
		}, "")
}

// OnPauseToggled implements plugin.OnPauseToggled.
func (e *Extension) OnPauseToggled(ctx context.Context, paused bool) error {
	return e.record(ctx, ActionPauseToggled, SeverityWarning, OutcomeSuccess,
		ResourceConfig, "", CategoryAdmin,
		map[string]any{"paused": paused}, "")
}

func (e *Extension) record(ctx context.Context, action, severity, outcome, resource, resourceID, category string, metadata map[string]any, reason string) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	tid, err := typeid.Generate(eventIDPrefix)
	if err != nil {
		return fmt.Errorf("audithook: generate event id: %w", err)
	}

	event := &AuditEvent{
		ID:         tid.String(),
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   metadata,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if err := e.recorder.Record(ctx, event); err != nil {
		e.logger.Error("audit record failed", "action", action, "error", err)
		return err
	}
	return nil
}
