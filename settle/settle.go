// Package settle abstracts the host ledger's settlement-currency
// primitives. Recur moves value exclusively through a Bank; it never owns
// balances, transfer mechanics, or signature verification itself.
package settle

import (
	"context"
	"errors"

	"github.com/xraph/recur/types"
)

// Sentinel errors banks report. Implementations wrap these so callers can
// match with errors.Is.
var (
	ErrInsufficientFunds = errors.New("settle: insufficient funds")
	ErrUnknownAccount    = errors.New("settle: unknown account")
)

// Leg is one destination of a multi-leg transfer.
type Leg struct {
	To     types.Account
	Amount types.SettleAmount
}

// Bank is the host value-transfer primitive.
type Bank interface {
	// Balance returns the account's current settlement-currency balance.
	Balance(ctx context.Context, account types.Account) (types.SettleAmount, error)

	// Transfer debits from and credits every leg as a single all-or-
	// nothing unit: if any leg cannot settle, no leg does.
	Transfer(ctx context.Context, from types.Account, legs ...Leg) error
}
