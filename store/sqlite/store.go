// Package sqlite implements store.Store on SQLite via database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/xraph/recur"
	"github.com/xraph/recur/config"
	"github.com/xraph/recur/payment"
	recurstore "github.com/xraph/recur/store"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

// compile-time interface check
var _ recurstore.Store = (*Store)(nil)

// Store implements store.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given DSN (":memory:" works).
func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("recur/sqlite: open %s: %w", dsn, err)
	}
	// The engine serializes writes; a second connection would only
	// surface SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// DB returns the underlying database for direct access.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate creates the required tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("recur/sqlite: migrate: %w", err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Subscription registry ====================

func (s *Store) CreateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recur/sqlite: begin create: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var id int64
	err = tx.QueryRowContext(ctx,
		`UPDATE recur_counters SET value = value + 1 WHERE name = 'subscriptions' RETURNING value`,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("recur/sqlite: next id: %w", err)
	}

	var position int64
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recur_subscriber_index WHERE subscriber = ?`,
		string(sub.Subscriber),
	).Scan(&position)
	if err != nil {
		return fmt.Errorf("recur/sqlite: index position: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO recur_subscriptions
			(id, subscriber, merchant, price, interval, active, created_at, last_payment, next_due, total_payments)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(sub.Subscriber), string(sub.Merchant), int64(sub.Price), int64(sub.Interval),
		boolToInt(sub.Active), int64(sub.CreatedAt), int64(sub.LastPayment), int64(sub.NextDue),
		int64(sub.TotalPayments),
	)
	if err != nil {
		return fmt.Errorf("recur/sqlite: insert subscription: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO recur_subscriber_index (subscriber, position, subscription_id) VALUES (?, ?, ?)`,
		string(sub.Subscriber), position, id,
	)
	if err != nil {
		return fmt.Errorf("recur/sqlite: insert index entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recur/sqlite: commit create: %w", err)
	}
	sub.ID = uint64(id)
	return nil
}

func (s *Store) GetSubscription(ctx context.Context, id uint64) (*subscription.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, subscriber, merchant, price, interval, active, created_at, last_payment, next_due, total_payments
		 FROM recur_subscriptions WHERE id = ?`, int64(id))
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recur.ErrNotFound
		}
		return nil, fmt.Errorf("recur/sqlite: get subscription: %w", err)
	}
	return sub, nil
}

func (s *Store) CancelSubscription(ctx context.Context, id uint64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE recur_subscriptions SET active = 0 WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("recur/sqlite: cancel subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("recur/sqlite: cancel subscription: %w", err)
	}
	if n == 0 {
		return recur.ErrNotFound
	}
	return nil
}

func (s *Store) CountBySubscriber(ctx context.Context, subscriber types.Account) (uint64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recur_subscriber_index WHERE subscriber = ?`,
		string(subscriber),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("recur/sqlite: count by subscriber: %w", err)
	}
	return uint64(count), nil
}

func (s *Store) SubscriptionIDAt(ctx context.Context, subscriber types.Account, index uint64) (uint64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT subscription_id FROM recur_subscriber_index WHERE subscriber = ? AND position = ?`,
		string(subscriber), int64(index),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, recur.ErrNotFound
		}
		return 0, fmt.Errorf("recur/sqlite: subscription id at: %w", err)
	}
	return uint64(id), nil
}

func (s *Store) SubscriptionTotal(ctx context.Context) (uint64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM recur_counters WHERE name = 'subscriptions'`,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("recur/sqlite: subscription total: %w", err)
	}
	return uint64(total), nil
}

// ==================== Payment ledger ====================

func (s *Store) ApplyPayment(ctx context.Context, sub *subscription.Subscription, rec *payment.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recur/sqlite: begin apply: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx,
		`UPDATE recur_subscriptions
		 SET last_payment = ?, next_due = ?, total_payments = ?
		 WHERE id = ?`,
		int64(sub.LastPayment), int64(sub.NextDue), int64(sub.TotalPayments), int64(sub.ID))
	if err != nil {
		return fmt.Errorf("recur/sqlite: update subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("recur/sqlite: update subscription: %w", err)
	}
	if n == 0 {
		return recur.ErrNotFound
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO recur_payments (subscription_id, sequence, base_amount, settle_amount, rate, fee, height)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		int64(rec.SubscriptionID), int64(rec.Sequence), int64(rec.BaseAmount),
		int64(rec.SettleAmount), int64(rec.Rate), int64(rec.Fee), int64(rec.Height))
	if err != nil {
		return fmt.Errorf("recur/sqlite: insert payment: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO recur_earnings (merchant, total) VALUES (?, ?)
		 ON CONFLICT (merchant) DO UPDATE SET total = total + excluded.total`,
		string(sub.Merchant), int64(rec.Net()))
	if err != nil {
		return fmt.Errorf("recur/sqlite: credit merchant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recur/sqlite: commit apply: %w", err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, subscriptionID, sequence uint64) (*payment.Record, error) {
	var rec payment.Record
	var subID, seq, base, amount, rate, fee, height int64
	err := s.db.QueryRowContext(ctx,
		`SELECT subscription_id, sequence, base_amount, settle_amount, rate, fee, height
		 FROM recur_payments WHERE subscription_id = ? AND sequence = ?`,
		int64(subscriptionID), int64(sequence),
	).Scan(&subID, &seq, &base, &amount, &rate, &fee, &height)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recur.ErrNotFound
		}
		return nil, fmt.Errorf("recur/sqlite: get payment: %w", err)
	}
	rec = payment.Record{
		SubscriptionID: uint64(subID),
		Sequence:       uint64(seq),
		BaseAmount:     types.BaseAmount(base),
		SettleAmount:   types.SettleAmount(amount),
		Rate:           types.Rate(rate),
		Fee:            types.SettleAmount(fee),
		Height:         uint64(height),
	}
	return &rec, nil
}

func (s *Store) MerchantEarnings(ctx context.Context, merchant types.Account) (types.SettleAmount, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT total FROM recur_earnings WHERE merchant = ?`, string(merchant),
	).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("recur/sqlite: merchant earnings: %w", err)
	}
	return types.SettleAmount(total), nil
}

// ==================== Global configuration ====================

func (s *Store) GetConfig(ctx context.Context) (*config.Config, error) {
	var rate, rateUpdatedAt int64
	var recipient string
	var paused int
	err := s.db.QueryRowContext(ctx,
		`SELECT rate, fee_recipient, paused, rate_updated_at FROM recur_config WHERE id = 1`,
	).Scan(&rate, &recipient, &paused, &rateUpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recur.ErrNotFound
		}
		return nil, fmt.Errorf("recur/sqlite: get config: %w", err)
	}
	return &config.Config{
		Rate:          types.Rate(rate),
		FeeRecipient:  types.Account(recipient),
		Paused:        paused != 0,
		RateUpdatedAt: uint64(rateUpdatedAt),
	}, nil
}

func (s *Store) PutConfig(ctx context.Context, cfg *config.Config) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recur_config (id, rate, fee_recipient, paused, rate_updated_at)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			rate = excluded.rate,
			fee_recipient = excluded.fee_recipient,
			paused = excluded.paused,
			rate_updated_at = excluded.rate_updated_at`,
		int64(cfg.Rate), string(cfg.FeeRecipient), boolToInt(cfg.Paused), int64(cfg.RateUpdatedAt))
	if err != nil {
		return fmt.Errorf("recur/sqlite: put config: %w", err)
	}
	return nil
}

// ==================== helpers ====================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*subscription.Subscription, error) {
	var id, price, interval, createdAt, lastPayment, nextDue, totalPayments int64
	var subscriber, merchant string
	var active int
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
		Active:        active != 0,
		CreatedAt:     uint64(createdAt),
		LastPayment:   uint64(lastPayment),
		NextDue:       uint64(nextDue),
		TotalPayments: uint64(totalPayments),
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
