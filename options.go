package recur

import (
	"log/slog"

	"github.com/xraph/recur/plugin"
	"github.com/xraph/recur/types"
)

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithRate sets the conversion rate a fresh ledger is seeded with.
// Ignored when the store already holds a configuration.
func WithRate(rate types.Rate) Option {
	return func(e *Engine) {
		e.seedRate = rate
	}
}

// WithFeeRecipient sets the fee recipient a fresh ledger is seeded with.
// Defaults to the administrator. Ignored when the store already holds a
// configuration.
func WithFeeRecipient(account types.Account) Option {
	return func(e *Engine) {
		e.seedRecipient = account
	}
}
