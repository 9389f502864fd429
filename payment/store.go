package payment

import (
	"context"

	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

// Store is the payment-ledger slice of the unified store interface.
type Store interface {
	// Apply commits one successful payment: persists the already-advanced
	// subscription, appends the record, and credits the merchant
	// accumulator with the record's net amount — all as one atomic step.
	// rec.Sequence must equal sub.TotalPayments.
	Apply(ctx context.Context, sub *subscription.Subscription, rec *Record) error

	Get(ctx context.Context, subscriptionID, sequence uint64) (*Record, error)

	// MerchantEarnings returns the cumulative net settlement amount the
	// merchant has received, zero for unknown accounts.
	MerchantEarnings(ctx context.Context, merchant types.Account) (types.SettleAmount, error)
}
