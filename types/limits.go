package types

import "errors"

// Subscription bounds. MinInterval is measured in ledger heights; at one
// block per ten minutes 144 heights is roughly one day.
const (
	// MinSubscriptionAmount is the smallest allowed price in base units.
	MinSubscriptionAmount BaseAmount = 1_000

	// MaxSubscriptionAmount is the largest allowed price in base units.
	MaxSubscriptionAmount BaseAmount = 100_000_000_000

	// MinInterval is the smallest allowed billing interval in heights.
	MinInterval uint64 = 144

	// MaxSubscriptionsPerAccount caps lifetime creations per subscriber.
	// Cancellation never frees a slot.
	MaxSubscriptionsPerAccount uint64 = 50
)

// ErrAmountOverflow reports a conversion whose settlement amount does not
// fit in 64 bits. Callers surface it as an invalid-amount failure.
var ErrAmountOverflow = errors.New("types: settlement amount overflows uint64")

// Limits bundles the static configuration bounds for the query surface.
type Limits struct {
	MinAmount      BaseAmount `json:"min_amount"`
	MaxAmount      BaseAmount `json:"max_amount"`
	MinInterval    uint64     `json:"min_interval"`
	MaxPerAccount  uint64     `json:"max_per_account"`
	FeeBPS         uint64     `json:"fee_bps"`
	BPSDenominator uint64     `json:"bps_denominator"`
	RateScale      uint64     `json:"rate_scale"`
}

// DefaultLimits returns the compiled-in bounds.
func DefaultLimits() Limits {
	return Limits{
		MinAmount:      MinSubscriptionAmount,
		MaxAmount:      MaxSubscriptionAmount,
		MinInterval:    MinInterval,
		MaxPerAccount:  MaxSubscriptionsPerAccount,
		FeeBPS:         FeeBPS,
		BPSDenominator: BPSDenominator,
		RateScale:      RateScale,
	}
}
