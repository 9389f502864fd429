// Package postgres implements store.Store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xraph/recur"
	"github.com/xraph/recur/config"
	"github.com/xraph/recur/payment"
	recurstore "github.com/xraph/recur/store"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

// compile-time interface check
var _ recurstore.Store = (*Store)(nil)

// Store implements store.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and returns a Store.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("recur/postgres: connect: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool wraps an existing pool.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool returns the underlying pool for direct access.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Migrate creates the required tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("recur/postgres: migrate: %w", err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// ==================== Subscription registry ====================

func (s *Store) CreateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("recur/postgres: begin create: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var id int64
	err = tx.QueryRow(ctx,
		`UPDATE recur_counters SET value = value + 1 WHERE name = 'subscriptions' RETURNING value`,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("recur/postgres: next id: %w", err)
	}

	var position int64
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM recur_subscriber_index WHERE subscriber = $1`,
		string(sub.Subscriber),
	).Scan(&position)
	if err != nil {
		return fmt.Errorf("recur/postgres: index position: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO recur_subscriptions
			(id, subscriber, merchant, price, billing_interval, active, created_at, last_payment, next_due, total_payments)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, string(sub.Subscriber), string(sub.Merchant), int64(sub.Price), int64(sub.Interval),
		sub.Active, int64(sub.CreatedAt), int64(sub.LastPayment), int64(sub.NextDue),
		int64(sub.TotalPayments))
	if err != nil {
		return fmt.Errorf("recur/postgres: insert subscription: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO recur_subscriber_index (subscriber, position, subscription_id) VALUES ($1, $2, $3)`,
		string(sub.Subscriber), position, id)
	if err != nil {
		return fmt.Errorf("recur/postgres: insert index entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("recur/postgres: commit create: %w", err)
	}
	sub.ID = uint64(id)
	return nil
}

func (s *Store) GetSubscription(ctx context.Context, id uint64) (*subscription.Subscription, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, subscriber, merchant, price, billing_interval, active, created_at, last_payment, next_due, total_payments
		 FROM recur_subscriptions WHERE id = $1`, int64(id))
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, recur.ErrNotFound
		}
		return nil, fmt.Errorf("recur/postgres: get subscription: %w", err)
	}
	return sub, nil
}

func (s *Store) CancelSubscription(ctx context.Context, id uint64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE recur_subscriptions SET active = FALSE WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("recur/postgres: cancel subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return recur.ErrNotFound
	}
	return nil
}

func (s *Store) CountBySubscriber(ctx context.Context, subscriber types.Account) (uint64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM recur_subscriber_index WHERE subscriber = $1`,
		string(subscriber),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("recur/postgres: count by subscriber: %w", err)
	}
	return uint64(count), nil
}

func (s *Store) SubscriptionIDAt(ctx context.Context, subscriber types.Account, index uint64) (uint64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`SELECT subscription_id FROM recur_subscriber_index WHERE subscriber = $1 AND position = $2`,
		string(subscriber), int64(index),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, recur.ErrNotFound
		}
		return 0, fmt.Errorf("recur/postgres: subscription id at: %w", err)
	}
	return uint64(id), nil
}

func (s *Store) SubscriptionTotal(ctx context.Context) (uint64, error) {
	var total int64
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM recur_counters WHERE name = 'subscriptions'`,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("recur/postgres: subscription total: %w", err)
	}
	return uint64(total), nil
}

// ==================== Payment ledger ====================

func (s *Store) ApplyPayment(ctx context.Context, sub *subscription.Subscription, rec *payment.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("recur/postgres: begin apply: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	tag, err := tx.Exec(ctx,
		`UPDATE recur_subscriptions
		 SET last_payment = $1, next_due = $2, total_payments = $3
		 WHERE id = $4`,
		int64(sub.LastPayment), int64(sub.NextDue), int64(sub.TotalPayments), int64(sub.ID))
	if err != nil {
		return fmt.Errorf("recur/postgres: update subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return recur.ErrNotFound
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO recur_payments (subscription_id, sequence, base_amount, settle_amount, rate, fee, height)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		int64(rec.SubscriptionID), int64(rec.Sequence), int64(rec.BaseAmount),
		int64(rec.SettleAmount), int64(rec.Rate), int64(rec.Fee), int64(rec.Height))
	if err != nil {
		return fmt.Errorf("recur/postgres: insert payment: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO recur_earnings (merchant, total) VALUES ($1, $2)
		 ON CONFLICT (merchant) DO UPDATE SET total = recur_earnings.total + EXCLUDED.total`,
		string(sub.Merchant), int64(rec.Net()))
	if err != nil {
		return fmt.Errorf("recur/postgres: credit merchant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("recur/postgres: commit apply: %w", err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, subscriptionID, sequence uint64) (*payment.Record, error) {
	var subID, seq, base, amount, rate, fee, height int64
	err := s.pool.QueryRow(ctx,
		`SELECT subscription_id, sequence, base_amount, settle_amount, rate, fee, height
		 FROM recur_payments WHERE subscription_id = $1 AND sequence = $2`,
		int64(subscriptionID), int64(sequence),
	).Scan(&subID, &seq, &base, &amount, &rate, &fee, &height)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, recur.ErrNotFound
		}
		return nil, fmt.Errorf("recur/postgres: get payment: %w", err)
	}
	return &payment.Record{
		SubscriptionID: uint64(subID),
		Sequence:       uint64(seq),
		BaseAmount:     types.BaseAmount(base),
		SettleAmount:   types.SettleAmount(amount),
		Rate:           types.Rate(rate),
		Fee:            types.SettleAmount(fee),
		Height:         uint64(height),
	}, nil
}

func (s *Store) MerchantEarnings(ctx context.Context, merchant types.Account) (types.SettleAmount, error) {
	var total int64
	err := s.pool.QueryRow(ctx,
		`SELECT total FROM recur_earnings WHERE merchant = $1`, string(merchant),
	).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("recur/postgres: merchant earnings: %w", err)
	}
	return types.SettleAmount(total), nil
}

// ==================== Global configuration ====================

func (s *Store) GetConfig(ctx context.Context) (*config.Config, error) {
	var rate, rateUpdatedAt int64
	var recipient string
	var paused bool
	err := s.pool.QueryRow(ctx,
		`SELECT rate, fee_recipient, paused, rate_updated_at FROM recur_config WHERE id = 1`,
	).Scan(&rate, &recipient, &paused, &rateUpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, recur.ErrNotFound
		}
		return nil, fmt.Errorf("recur/postgres: get config: %w", err)
	}
	return &config.Config{
		Rate:          types.Rate(rate),
		FeeRecipient:  types.Account(recipient),
		Paused:        paused,
		RateUpdatedAt: uint64(rateUpdatedAt),
	}, nil
}

func (s *Store) PutConfig(ctx context.Context, cfg *config.Config) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO recur_config (id, rate, fee_recipient, paused, rate_updated_at)
		 VALUES (1, $1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET
			rate = EXCLUDED.rate,
			fee_recipient = EXCLUDED.fee_recipient,
			paused = EXCLUDED.paused,
			rate_updated_at = EXCLUDED.rate_updated_at`,
		int64(cfg.Rate), string(cfg.FeeRecipient), cfg.Paused, int64(cfg.RateUpdatedAt))
	if err != nil {
		return fmt.Errorf("recur/postgres: put config: %w", err)
	}
	return nil
}

// ==================== helpers ====================

func scanSubscription(row pgx.Row) (*subscription.Subscription, error) {
	var id, price, interval, createdAt, lastPayment, nextDue, totalPayments int64
	var subscriber, merchant string
	var active bool
	err := row.Scan(&id, &subscriber, &merchant, &price, &interval, &active,
		&createdAt, &lastPayment, &nextDue, &totalPayments)
	if err != nil {
		return nil, err
	}
	return &subscription.Subscription{
		ID:            uint64(id),
		Subscriber:    types.Account(subscriber),
		Merchant:      types.Account(merchant),
		Price:         types.BaseAmount(price),
		Interval:      uint64(interval),
		Active:        active,
		CreatedAt:     uint64(createdAt),
		LastPayment:   uint64(lastPayment),
		NextDue:       uint64(nextDue),
		TotalPayments: uint64(totalPayments),
	}, nil
}
