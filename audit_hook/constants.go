package audithook

// Action constants for audit events.
const (
	// Subscription actions
	ActionSubscriptionCreated   = "subscription.created"
	ActionSubscriptionCancelled = "subscription.cancelled"

	// Payment actions
	ActionPaymentExecuted = "payment.executed"
	ActionPaymentFailed   = "payment.failed"

	// Administrative actions
	ActionRateUpdated  = "rate.updated"
	ActionPauseToggled = "pause.toggled"
)

// Resource constants for audit events.
const (
	ResourceSubscription = "subscription"
	ResourcePayment      = "payment"
	ResourceConfig       = "config"
)

// Category constants for audit events.
const (
	CategorySubscription = "subscription"
	CategoryPayment      = "payment"
	CategoryAdmin        = "admin"
)

// Severity levels for audit events.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
