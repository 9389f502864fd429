package recur

import "github.com/xraph/recur/types"

// Re-export common types for convenience so users don't have to import the
// types package.

// Account is re-exported from the types package.
type Account = types.Account

// BaseAmount is re-exported from the types package.
type BaseAmount = types.BaseAmount

// SettleAmount is re-exported from the types package.
type SettleAmount = types.SettleAmount

// Rate is re-exported from the types package.
type Rate = types.Rate

// Quote is re-exported from the types package.
type Quote = types.Quote

// Re-export conversion helpers
var (
	Convert   = types.Convert
	Split     = types.Split
	Price     = types.Price
	ParseRate = types.ParseRate
)
