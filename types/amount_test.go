package types

import (
	"errors"
	"math"
	"testing"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		base BaseAmount
		rate Rate
		want SettleAmount
	}{
		{"typical price", 1_000_000, 30_000, 300},
		{"floors fractional result", 1_000, 30_000, 0},
		{"just below one unit", 3_333, 30_000, 0},
		{"exactly one unit", 3_334, 30_000, 1},
		{"rate of one scale", 5, RateScale, 5},
		{"zero base", 0, 30_000, 0},
		{"max price at default rate", 100_000_000_000, 30_000, 30_000_000},
		{"large product needs wide intermediate", math.MaxUint64 / 2, 2 * RateScale, math.MaxUint64 - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.base, tt.rate)
			if err != nil {
				t.Fatalf("Convert(%d, %d): %v", tt.base, tt.rate, err)
			}
			if got != tt.want {
				t.Errorf("Convert(%d, %d) = %d, want %d", tt.base, tt.rate, got, tt.want)
			}
		})
	}
}

func TestConvertOverflow(t *testing.T) {
	_, err := Convert(math.MaxUint64, Rate(2*RateScale))
	if !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("err = %v, want ErrAmountOverflow", err)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		amount  SettleAmount
		wantFee SettleAmount
	}{
		{"typical settlement", 300, 7},  // floor(300*250/10000) = 7.5 -> 7
		{"exact split", 10_000, 250},    // 2.5% exactly
		{"below fee threshold", 39, 0},  // floor(0.975)
		{"at fee threshold", 40, 1},     // floor(1.0)
		{"zero", 0, 0},
		{"max amount", math.MaxUint64, math.MaxUint64 / 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, net := Split(tt.amount)
			if fee != tt.wantFee {
				t.Errorf("Split(%d) fee = %d, want %d", tt.amount, fee, tt.wantFee)
			}
			if fee+net != tt.amount {
				t.Errorf("Split(%d): fee %d + net %d != amount", tt.amount, fee, net)
			}
		})
	}
}

func TestPrice(t *testing.T) {
	q, err := Price(1_000_000, 30_000)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if q.Amount != 300 || q.Fee != 7 || q.Net != 293 {
		t.Fatalf("Price(1_000_000, 30_000) = %+v, want {300 7 293}", q)
	}
	if q.Fee+q.Net != q.Amount {
		t.Fatalf("quote does not reconcile: %+v", q)
	}
}
