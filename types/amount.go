// Package types provides the common value types used across Recur.
package types

import (
	"fmt"
	"math/bits"
)

// All monetary arithmetic is integer-only — no floating point.

// BaseAmount is an amount in base units: the smallest unit of the stable
// unit of account subscriptions are priced in (the satoshi-equivalent).
type BaseAmount uint64

// SettleAmount is an amount in settlement units: the smallest unit of the
// volatile currency actually transferred at payment time.
type SettleAmount uint64

// Rate is the fixed-point price of one base-currency unit in settlement
// units, scaled by RateScale. A Rate of 30_000 with RateScale 1e8 means one
// base-currency unit buys 0.0003 settlement-currency units.
type Rate uint64

// Fixed-point and fee parameters. These are wire-compatible constants: a
// deployment that changes them changes the meaning of every stored record.
const (
	// RateScale is the precision factor rates are scaled by.
	RateScale = 100_000_000

	// FeeBPS is the platform fee in basis points (250 = 2.5%).
	FeeBPS = 250

	// BPSDenominator converts basis points to a fraction.
	BPSDenominator = 10_000

	// DefaultRate is the conversion rate a fresh ledger starts with.
	DefaultRate Rate = 30_000
)

// Convert turns a base-unit amount into a settlement-unit amount at the
// given rate. The fractional remainder is truncated (floored): sub-unit
// dust is systematically destroyed rather than credited to either party.
// The multiply runs through a 128-bit intermediate so any price/rate pair
// whose true product fits in uint64 converts without overflow.
func Convert(base BaseAmount, rate Rate) (SettleAmount, error) {
	hi, lo := bits.Mul64(uint64(base), uint64(rate))
	if hi >= RateScale {
		return 0, fmt.Errorf("types: convert %d at rate %d: %w", base, rate, ErrAmountOverflow)
	}
	quo, _ := bits.Div64(hi, lo, RateScale)
	return SettleAmount(quo), nil
}

// Split divides a settlement amount into the platform fee and the net
// merchant amount. The net leg is derived by subtraction, never computed
// independently, so fee+net always reconstructs the original amount.
func Split(amount SettleAmount) (fee, net SettleAmount) {
	// 128-bit intermediate: amount*FeeBPS can exceed uint64 even though
	// the fee itself never can.
	hi, lo := bits.Mul64(uint64(amount), FeeBPS)
	quo, _ := bits.Div64(hi, lo, BPSDenominator)
	fee = SettleAmount(quo)
	return fee, amount - fee
}

// Quote is the result of pricing a base amount at a rate.
type Quote struct {
	Amount SettleAmount `json:"amount"` // gross settlement amount
	Fee    SettleAmount `json:"fee"`    // platform share
	Net    SettleAmount `json:"net"`    // merchant share
}

// Price converts and splits in one step.
func Price(base BaseAmount, rate Rate) (Quote, error) {
	amount, err := Convert(base, rate)
	if err != nil {
		return Quote{}, err
	}
	fee, net := Split(amount)
	return Quote{Amount: amount, Fee: fee, Net: net}, nil
}
