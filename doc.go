// Package recur provides a recurring-billing settlement ledger for Go
// applications.
//
// Recur prices subscriptions in a stable unit of account ("base units")
// and settles them in a volatile currency ("settlement units") at the
// conversion rate in effect when each payment executes. Merchants receive
// a predictable real value regardless of settlement-currency volatility;
// the rate each payment locked is stored with its record and never
// retroactively altered.
//
// Recur is a library, not a service. It implements the subscription state
// machine, rate-locked conversion, fee splitting, and the bookkeeping that
// keeps subscriber, merchant, and platform balances consistent. The host
// environment supplies what the ledger only consumes: caller identity, a
// monotonically increasing height counter, and the atomic value-transfer
// primitive (see the settle package).
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/recur"
//	    bankmem "github.com/xraph/recur/settle/memory"
//	    "github.com/xraph/recur/store/memory"
//	)
//
//	store := memory.New()
//	bank := bankmem.New()
//	engine := recur.New(store, bank, clock, "admin")
//
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Stop()
//
//	sub, err := engine.CreateSubscription(ctx, "alice", "acme", 1_000_000, 144)
//	...
//	receipt, err := engine.Pay(ctx, sub.ID)
//
// # Arithmetic
//
// All monetary calculations are integer-only. Conversion floors fractional
// settlement dust — it is destroyed, never credited to either party — and
// the fee split derives the merchant net by subtraction so fee+net always
// equals the settlement amount exactly. Both behaviors are load-bearing
// for numeric compatibility with existing ledgers and must not change.
//
// # Payments are pulled, not pushed
//
// Nothing fires when a due height passes. An external agent (merchant,
// subscriber, or a sweep job) calls Pay once a subscription is due;
// premature calls fail with ErrPaymentNotDue and change nothing, so the
// caller loop is safely idempotent between due heights.
package recur
