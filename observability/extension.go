// Package observability provides a metrics extension for Recur that
// records lifecycle event counts and settlement volume.
package observability

import (
	"context"

	"github.com/xraph/recur/payment"
	"github.com/xraph/recur/plugin"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                 = (*MetricsExtension)(nil)
	_ plugin.OnSubscriptionCreated  = (*MetricsExtension)(nil)
	_ plugin.OnSubscriptionCanceled = (*MetricsExtension)(nil)
	_ plugin.OnPaymentExecuted      = (*MetricsExtension)(nil)
	_ plugin.OnPaymentFailed        = (*MetricsExtension)(nil)
	_ plugin.OnRateUpdated          = (*MetricsExtension)(nil)
	_ plugin.OnPauseToggled         = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as an engine plugin to automatically track billing metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Subscription metrics
	SubscriptionCreated  Counter
	SubscriptionCanceled Counter

	// Payment metrics
	PaymentExecuted  Counter
	PaymentFailed    Counter
	SettlementVolume Counter
	FeesCollected    Counter
	SettlementAmount Histogram

	// Administrative metrics
	RateUpdates  Counter
	PauseToggles Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided
// MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		SubscriptionCreated:  factory.Counter("recur.subscription.created"),
		SubscriptionCanceled: factory.Counter("recur.subscription.canceled"),

		PaymentExecuted:  factory.Counter("recur.payment.executed"),
		PaymentFailed:    factory.Counter("recur.payment.failed"),
		SettlementVolume: factory.Counter("recur.payment.settlement_volume"),
		FeesCollected:    factory.Counter("recur.payment.fees_collected"),
		SettlementAmount: factory.Histogram("recur.payment.settlement_amount"),

		RateUpdates:  factory.Counter("recur.admin.rate_updates"),
		PauseToggles: factory.Counter("recur.admin.pause_toggles"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnSubscriptionCreated implements plugin.OnSubscriptionCreated.
func (m *MetricsExtension) OnSubscriptionCreated(_ context.Context, _ *subscription.Subscription) error {
	m.SubscriptionCreated.Inc()
	return nil
}

// OnSubscriptionCanceled implements plugin.OnSubscriptionCanceled.
func (m *MetricsExtension) OnSubscriptionCanceled(_ context.Context, _ *subscription.Subscription) error {
	m.SubscriptionCanceled.Inc()
	return nil
}

// OnPaymentExecuted implements plugin.OnPaymentExecuted.
func (m *MetricsExtension) OnPaymentExecuted(_ context.Context, _ *subscription.Subscription, rec *payment.Record) error {
	m.PaymentExecuted.Inc()
	m.SettlementVolume.Add(float64(rec.SettleAmount))
	m.FeesCollected.Add(float64(rec.Fee))
	m.SettlementAmount.Observe(float64(rec.SettleAmount))
	return nil
}

// OnPaymentFailed implements plugin.OnPaymentFailed.
func (m *MetricsExtension) OnPaymentFailed(_ context.Context, _ uint64, _ error) error {
	m.PaymentFailed.Inc()
	return nil
}

// OnRateUpdated implements plugin.OnRateUpdated.
func (m *MetricsExtension) OnRateUpdated(_ context.Context, _, _ types.Rate, _ uint64) error {
	m.RateUpdates.Inc()
	return nil
}

// OnPauseToggled implements plugin.OnPauseToggled.
func (m *MetricsExtension) OnPauseToggled(_ context.Context, _ bool) error {
	m.PauseToggles.Inc()
	return nil
}
