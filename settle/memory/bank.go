// Package memory provides an in-memory settle.Bank for tests and
// single-process embedding.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/recur/settle"
	"github.com/xraph/recur/types"
)

// compile-time interface check
var _ settle.Bank = (*Bank)(nil)

// Bank keeps settlement balances in a map. Accounts exist implicitly with
// a zero balance.
type Bank struct {
	mu       sync.RWMutex
	balances map[types.Account]types.SettleAmount
}

// New creates an empty Bank.
func New() *Bank {
	return &Bank{balances: make(map[types.Account]types.SettleAmount)}
}

// Deposit credits the account out of thin air. Test setup helper.
func (b *Bank) Deposit(account types.Account, amount types.SettleAmount) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[account] += amount
}

// Balance implements settle.Bank.
func (b *Bank) Balance(_ context.Context, account types.Account) (types.SettleAmount, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[account], nil
}

// Transfer implements settle.Bank. All legs settle under one lock: the
// debit is checked against the leg total before anything moves.
func (b *Bank) Transfer(_ context.Context, from types.Account, legs ...settle.Leg) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var total types.SettleAmount
	for _, leg := range legs {
		total += leg.Amount
	}
	if b.balances[from] < total {
		return fmt.Errorf("settle/memory: debit %d from %s: %w", total, from, settle.ErrInsufficientFunds)
	}

	b.balances[from] -= total
	for _, leg := range legs {
		b.balances[leg.To] += leg.Amount
	}
	return nil
}
