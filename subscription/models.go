// Package subscription defines the canonical subscription record and its
// storage contract.
package subscription

import "github.com/xraph/recur/types"

// Subscription is a recurring agreement between a subscriber and a
// merchant: a price fixed in base units, billed every Interval heights,
// settled in settlement units at the rate in effect when each payment
// executes. Records are never physically deleted; cancellation flips
// Active to false and is terminal.
type Subscription struct {
	// ID is assigned from a global counter starting at 1 and never reused.
	ID uint64 `json:"id"`

	Subscriber types.Account    `json:"subscriber"`
	Merchant   types.Account    `json:"merchant"`
	Price      types.BaseAmount `json:"price"`

	// Interval is the billing period as a ledger-height delta.
	Interval uint64 `json:"interval"`

	Active bool `json:"active"`

	// CreatedAt is the height the subscription was created at.
	CreatedAt uint64 `json:"created_at"`

	// LastPayment is the height of the most recent successful payment,
	// zero before the first one.
	LastPayment uint64 `json:"last_payment"`

	// NextDue is the height at or after which the next payment may
	// execute: CreatedAt+Interval before the first payment, then always
	// LastPayment+Interval.
	NextDue uint64 `json:"next_due"`

	// TotalPayments counts executed payments and equals the sequence
	// number of the latest payment record.
	TotalPayments uint64 `json:"total_payments"`
}

// Payable reports whether a payment may execute at the given height.
func (s *Subscription) Payable(height uint64) bool {
	return s.Active && height >= s.NextDue
}

// DueIn returns how many heights remain until the next payment is due,
// zero if it is already due.
func (s *Subscription) DueIn(height uint64) uint64 {
	if height >= s.NextDue {
		return 0
	}
	return s.NextDue - height
}

// Advance records a successful payment executed at the given height.
func (s *Subscription) Advance(height uint64) {
	s.LastPayment = height
	s.NextDue = height + s.Interval
	s.TotalPayments++
}
