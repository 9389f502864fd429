package types

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var rateScale = decimal.New(1, 8) // 1e8, matches RateScale

// ParseRate parses a human-readable conversion rate — settlement units per
// base-currency unit, e.g. "0.0003" — into a scaled fixed-point Rate.
// The value must be positive and representable at RateScale precision.
func ParseRate(s string) (Rate, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("types: parse rate %q: %w", s, err)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("types: parse rate %q: rate must be positive", s)
	}

	scaled := d.Mul(rateScale)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("types: parse rate %q: more precision than scale %d allows", s, RateScale)
	}

	bi := scaled.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("types: parse rate %q: out of range", s)
	}
	return Rate(bi.Uint64()), nil
}

// Decimal returns the rate as settlement units per base-currency unit.
func (r Rate) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(r)), -8)
}

// String formats the rate in settlement units per base-currency unit.
func (r Rate) String() string { return r.Decimal().String() }
