// Package payment defines the append-only payment history and its storage
// contract.
package payment

import "github.com/xraph/recur/types"

// Record is one executed payment. Records are keyed by (subscription id,
// sequence) where sequences are 1-based and gap-free, and are immutable
// once written. The rate stored is the rate in effect at execution.
type Record struct {
	SubscriptionID uint64 `json:"subscription_id"`
	Sequence       uint64 `json:"sequence"`

	BaseAmount   types.BaseAmount   `json:"base_amount"`
	SettleAmount types.SettleAmount `json:"settle_amount"`
	Rate         types.Rate         `json:"rate"`
	Fee          types.SettleAmount `json:"fee"`

	// Height is the ledger height the payment executed at.
	Height uint64 `json:"height"`
}

// Net is the merchant's share: the settlement amount minus the platform
// fee. Derived rather than stored so fee+net reconstructs the amount by
// construction.
func (r *Record) Net() types.SettleAmount {
	return r.SettleAmount - r.Fee
}

// Receipt is what Pay returns to the caller.
type Receipt struct {
	SubscriptionID uint64             `json:"subscription_id"`
	Sequence       uint64             `json:"sequence"`
	Amount         types.SettleAmount `json:"amount"`
	Fee            types.SettleAmount `json:"fee"`
	NextDue        uint64             `json:"next_due"`
}
