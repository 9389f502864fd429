// Package redis implements store.Store on Redis.
//
// Layout:
//
//	recur:sub:<id>        hash   subscription fields
//	recur:pay:<id>:<seq>  hash   payment record fields
//	recur:idx:<account>   list   subscription ids in creation order
//	recur:earnings        hash   merchant -> cumulative net
//	recur:config          hash   global configuration
//	recur:counter:subs    string lifetime subscription counter
//
// Multi-key writes go through a TxPipeline so each store call applies
// all-or-nothing; id assignment happens first under the engine's
// single-writer discipline.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/xraph/recur"
	"github.com/xraph/recur/config"
	"github.com/xraph/recur/payment"
	recurstore "github.com/xraph/recur/store"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

const (
	keyEarnings = "recur:earnings"
	keyConfig   = "recur:config"
	keyCounter  = "recur:counter:subs"
)

func keySub(id uint64) string { return fmt.Sprintf("recur:sub:%d", id) }

func keyPay(id, seq uint64) string { return fmt.Sprintf("recur:pay:%d:%d", id, seq) }

func keyIndex(account types.Account) string { return "recur:idx:" + string(account) }

// compile-time interface check
var _ recurstore.Store = (*Store)(nil)

// Store implements store.Store on a Redis client.
type Store struct {
	client *redis.Client
}

// New connects to a redis URL ("redis://host:port/db").
func New(url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("recur/redis: parse url: %w", err)
	}
	return &Store{client: redis.NewClient(opts)}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Client returns the underlying client for direct access.
func (s *Store) Client() *redis.Client { return s.client }

// Migrate is a no-op: redis needs no schema.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// ==================== Subscription registry ====================

func (s *Store) CreateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	id, err := s.client.Incr(ctx, keyCounter).Result()
	if err != nil {
		return fmt.Errorf("recur/redis: next id: %w", err)
	}
	sub.ID = uint64(id)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, keySub(sub.ID), subscriptionFields(sub))
	pipe.RPush(ctx, keyIndex(sub.Subscriber), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("recur/redis: create subscription: %w", err)
	}
	return nil
}

func (s *Store) GetSubscription(ctx context.Context, id uint64) (*subscription.Subscription, error) {
	fields, err := s.client.HGetAll(ctx, keySub(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("recur/redis: get subscription: %w", err)
	}
	if len(fields) == 0 {
		return nil, recur.ErrNotFound
	}
	return parseSubscription(id, fields)
}

func (s *Store) CancelSubscription(ctx context.Context, id uint64) error {
	n, err := s.client.Exists(ctx, keySub(id)).Result()
	if err != nil {
		return fmt.Errorf("recur/redis: cancel subscription: %w", err)
	}
	if n == 0 {
		return recur.ErrNotFound
	}
	if err := s.client.HSet(ctx, keySub(id), "active", "0").Err(); err != nil {
		return fmt.Errorf("recur/redis: cancel subscription: %w", err)
	}
	return nil
}

func (s *Store) CountBySubscriber(ctx context.Context, subscriber types.Account) (uint64, error) {
	n, err := s.client.LLen(ctx, keyIndex(subscriber)).Result()
	if err != nil {
		return 0, fmt.Errorf("recur/redis: count by subscriber: %w", err)
	}
	return uint64(n), nil
}

func (s *Store) SubscriptionIDAt(ctx context.Context, subscriber types.Account, index uint64) (uint64, error) {
	val, err := s.client.LIndex(ctx, keyIndex(subscriber), int64(index)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, recur.ErrNotFound
		}
		return 0, fmt.Errorf("recur/redis: subscription id at: %w", err)
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("recur/redis: subscription id at: %w", err)
	}
	return id, nil
}

func (s *Store) SubscriptionTotal(ctx context.Context) (uint64, error) {
	val, err := s.client.Get(ctx, keyCounter).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("recur/redis: subscription total: %w", err)
	}
	total, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("recur/redis: subscription total: %w", err)
	}
	return total, nil
}

// ==================== Payment ledger ====================

func (s *Store) ApplyPayment(ctx context.Context, sub *subscription.Subscription, rec *payment.Record) error {
	n, err := s.client.Exists(ctx, keySub(sub.ID)).Result()
	if err != nil {
		return fmt.Errorf("recur/redis: apply payment: %w", err)
	}
	if n == 0 {
		return recur.ErrNotFound
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, keySub(sub.ID),
		"last_payment", strconv.FormatUint(sub.LastPayment, 10),
		"next_due", strconv.FormatUint(sub.NextDue, 10),
		"total_payments", strconv.FormatUint(sub.TotalPayments, 10),
	)
	pipe.HSet(ctx, keyPay(rec.SubscriptionID, rec.Sequence), map[string]string{
		"base_amount":   strconv.FormatUint(uint64(rec.BaseAmount), 10),
		"settle_amount": strconv.FormatUint(uint64(rec.SettleAmount), 10),
		"rate":          strconv.FormatUint(uint64(rec.Rate), 10),
		"fee":           strconv.FormatUint(uint64(rec.Fee), 10),
		"height":        strconv.FormatUint(rec.Height, 10),
	})
	pipe.HIncrBy(ctx, keyEarnings, string(sub.Merchant), int64(rec.Net()))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("recur/redis: apply payment: %w", err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, subscriptionID, sequence uint64) (*payment.Record, error) {
	fields, err := s.client.HGetAll(ctx, keyPay(subscriptionID, sequence)).Result()
	if err != nil {
		return nil, fmt.Errorf("recur/redis: get payment: %w", err)
	}
	if len(fields) == 0 {
		return nil, recur.ErrNotFound
	}
	return parsePayment(subscriptionID, sequence, fields)
}

func (s *Store) MerchantEarnings(ctx context.Context, merchant types.Account) (types.SettleAmount, error) {
	val, err := s.client.HGet(ctx, keyEarnings, string(merchant)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("recur/redis: merchant earnings: %w", err)
	}
	total, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("recur/redis: merchant earnings: %w", err)
	}
	return types.SettleAmount(total), nil
}

// ==================== Global configuration ====================

func (s *Store) GetConfig(ctx context.Context) (*config.Config, error) {
	fields, err := s.client.HGetAll(ctx, keyConfig).Result()
	if err != nil {
		return nil, fmt.Errorf("recur/redis: get config: %w", err)
	}
	if len(fields) == 0 {
		return nil, recur.ErrNotFound
	}

	rate, err := strconv.ParseUint(fields["rate"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("recur/redis: get config: %w", err)
	}
	updatedAt, err := strconv.ParseUint(fields["rate_updated_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("recur/redis: get config: %w", err)
	}
	return &config.Config{
		Rate:          types.Rate(rate),
		FeeRecipient:  types.Account(fields["fee_recipient"]),
		Paused:        fields["paused"] == "1",
		RateUpdatedAt: updatedAt,
	}, nil
}

func (s *Store) PutConfig(ctx context.Context, cfg *config.Config) error {
	paused := "0"
	if cfg.Paused {
		paused = "1"
	}
	err := s.client.HSet(ctx, keyConfig,
		"rate", strconv.FormatUint(uint64(cfg.Rate), 10),
		"fee_recipient", string(cfg.FeeRecipient),
		"paused", paused,
		"rate_updated_at", strconv.FormatUint(cfg.RateUpdatedAt, 10),
	).Err()
	if err != nil {
		return fmt.Errorf("recur/redis: put config: %w", err)
	}
	return nil
}

// ==================== helpers ====================

func subscriptionFields(sub *subscription.Subscription) map[string]string {
	active := "0"
	if sub.Active {
		active = "1"
	}
	return map[string]string{
		"subscriber":     string(sub.Subscriber),
		"merchant":       string(sub.Merchant),
		"price":          strconv.FormatUint(uint64(sub.Price), 10),
		"interval":       strconv.FormatUint(sub.Interval, 10),
		"active":         active,
		"created_at":     strconv.FormatUint(sub.CreatedAt, 10),
		"last_payment":   strconv.FormatUint(sub.LastPayment, 10),
		"next_due":       strconv.FormatUint(sub.NextDue, 10),
		"total_payments": strconv.FormatUint(sub.TotalPayments, 10),
	}
}

func parseSubscription(id uint64, fields map[string]string) (*subscription.Subscription, error) {
	nums := make(map[string]uint64, 6)
	for _, f := range []string{"price", "interval", "created_at", "last_payment", "next_due", "total_payments"} {
		v, err := strconv.ParseUint(fields[f], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("recur/redis: subscription %d field %s: %w", id, f, err)
		}
		nums[f] = v
	}
	return &subscription.Subscription{
		ID:            id,
		Subscriber:    types.Account(fields["subscriber"]),
		Merchant:      types.Account(fields["merchant"]),
		Price:         types.BaseAmount(nums["price"]),
		Interval:      nums["interval"],
		Active:        fields["active"] == "1",
		CreatedAt:     nums["created_at"],
		LastPayment:   nums["last_payment"],
		NextDue:       nums["next_due"],
		TotalPayments: nums["total_payments"],
	}, nil
}

func parsePayment(subscriptionID, sequence uint64, fields map[string]string) (*payment.Record, error) {
	nums := make(map[string]uint64, 5)
	for _, f := range []string{"base_amount", "settle_amount", "rate", "fee", "height"} {
		v, err := strconv.ParseUint(fields[f], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("recur/redis: payment %d/%d field %s: %w", subscriptionID, sequence, f, err)
		}
		nums[f] = v
	}
	return &payment.Record{
		SubscriptionID: subscriptionID,
		Sequence:       sequence,
		BaseAmount:     types.BaseAmount(nums["base_amount"]),
		SettleAmount:   types.SettleAmount(nums["settle_amount"]),
		Rate:           types.Rate(nums["rate"]),
		Fee:            types.SettleAmount(nums["fee"]),
		Height:         nums["height"],
	}, nil
}
