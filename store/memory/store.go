// Package memory provides the in-memory reference implementation of
// store.Store.
package memory

import (
	"context"
	"sync"

	"github.com/xraph/recur"
	"github.com/xraph/recur/config"
	"github.com/xraph/recur/payment"
	recurstore "github.com/xraph/recur/store"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

// compile-time interface check
var _ recurstore.Store = (*Store)(nil)

// Store keeps every entity in maps guarded by one RWMutex. Reads and
// writes exchange copies so callers can stage mutations without leaking
// them into the store before commit.
type Store struct {
	mu sync.RWMutex

	// Subscription registry
	subscriptions map[uint64]subscription.Subscription
	index         map[types.Account][]uint64
	created       map[types.Account]uint64
	total         uint64 // lifetime counter, doubles as last assigned id

	// Payment ledger: slice position i holds sequence i+1, so the
	// gap-free invariant is structural.
	payments map[uint64][]payment.Record
	earnings map[types.Account]types.SettleAmount

	cfg *config.Config
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		subscriptions: make(map[uint64]subscription.Subscription),
		index:         make(map[types.Account][]uint64),
		created:       make(map[types.Account]uint64),
		payments:      make(map[uint64][]payment.Record),
		earnings:      make(map[types.Account]types.SettleAmount),
	}
}

// ==================== Subscription registry ====================

func (s *Store) CreateSubscription(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	sub.ID = s.total
	s.subscriptions[sub.ID] = *sub
	s.index[sub.Subscriber] = append(s.index[sub.Subscriber], sub.ID)
	s.created[sub.Subscriber]++
	return nil
}

func (s *Store) GetSubscription(_ context.Context, id uint64) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[id]
	if !ok {
		return nil, recur.ErrNotFound
	}
	return &sub, nil
}

func (s *Store) CancelSubscription(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[id]
	if !ok {
		return recur.ErrNotFound
	}
	sub.Active = false
	s.subscriptions[id] = sub
	return nil
}

func (s *Store) CountBySubscriber(_ context.Context, subscriber types.Account) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.created[subscriber], nil
}

func (s *Store) SubscriptionIDAt(_ context.Context, subscriber types.Account, index uint64) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.index[subscriber]
	if index >= uint64(len(ids)) {
		return 0, recur.ErrNotFound
	}
	return ids[index], nil
}

func (s *Store) SubscriptionTotal(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total, nil
}

// ==================== Payment ledger ====================

func (s *Store) ApplyPayment(_ context.Context, sub *subscription.Subscription, rec *payment.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscriptions[sub.ID]; !ok {
		return recur.ErrNotFound
	}
	if rec.Sequence != uint64(len(s.payments[rec.SubscriptionID]))+1 {
		return recur.ErrTransactionFailed
	}

	s.subscriptions[sub.ID] = *sub
	s.payments[rec.SubscriptionID] = append(s.payments[rec.SubscriptionID], *rec)
	s.earnings[sub.Merchant] += rec.Net()
	return nil
}

func (s *Store) GetPayment(_ context.Context, subscriptionID, sequence uint64) (*payment.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.payments[subscriptionID]
	if sequence == 0 || sequence > uint64(len(recs)) {
		return nil, recur.ErrNotFound
	}
	rec := recs[sequence-1]
	return &rec, nil
}

func (s *Store) MerchantEarnings(_ context.Context, merchant types.Account) (types.SettleAmount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.earnings[merchant], nil
}

// ==================== Global configuration ====================

func (s *Store) GetConfig(_ context.Context) (*config.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cfg == nil {
		return nil, recur.ErrNotFound
	}
	cfg := *s.cfg
	return &cfg, nil
}

func (s *Store) PutConfig(_ context.Context, cfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *cfg
	s.cfg = &c
	return nil
}

// ==================== Core ====================

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }
