// Package config holds the process-wide ledger configuration singleton.
package config

import "github.com/xraph/recur/types"

// Config is the global mutable configuration. There is exactly one per
// ledger; it changes only through the engine's administrator-gated setters.
type Config struct {
	// Rate is the current conversion rate, fixed-point scaled.
	Rate types.Rate `json:"rate"`

	// FeeRecipient receives the platform fee leg of every payment.
	FeeRecipient types.Account `json:"fee_recipient"`

	// Paused blocks creation, payment, and cancellation. Queries keep
	// working.
	Paused bool `json:"paused"`

	// RateUpdatedAt is the height of the last rate update.
	RateUpdatedAt uint64 `json:"rate_updated_at"`
}

// Stats is the aggregate snapshot the query surface exposes.
type Stats struct {
	Subscriptions uint64        `json:"subscriptions"` // lifetime creations
	Rate          types.Rate    `json:"rate"`
	Paused        bool          `json:"paused"`
	RateUpdatedAt uint64        `json:"rate_updated_at"`
	FeeRecipient  types.Account `json:"fee_recipient"`
}
