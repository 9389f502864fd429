package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/recur"
	"github.com/xraph/recur/config"
	"github.com/xraph/recur/payment"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	s := NewWithClient(client)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSubscriptionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub := &subscription.Subscription{
		Subscriber: "alice",
		Merchant:   "bob",
		Price:      1_000_000,
		Interval:   144,
		Active:     true,
		CreatedAt:  100,
		NextDue:    100,
	}
	if err := s.CreateSubscription(ctx, sub); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if sub.ID != 1 {
		t.Fatalf("first id = %d, want 1", sub.ID)
	}

	got, err := s.GetSubscription(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetSubscription: %v", err)
	}
	if got.Subscriber != "alice" || got.Merchant != "bob" || got.Price != 1_000_000 || !got.Active {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if err := s.CancelSubscription(ctx, sub.ID); err != nil {
		t.Fatalf("CancelSubscription: %v", err)
	}
	got, err = s.GetSubscription(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetSubscription after cancel: %v", err)
	}
	if got.Active {
		t.Fatal("subscription still active after cancel")
	}
}

func TestGetSubscriptionNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetSubscription(context.Background(), 999); !errors.Is(err, recur.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := s.CancelSubscription(context.Background(), 999); !errors.Is(err, recur.ErrNotFound) {
		t.Fatalf("cancel err = %v, want ErrNotFound", err)
	}
}

func TestSubscriberIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		sub := &subscription.Subscription{
			Subscriber: "alice",
			Merchant:   "bob",
			Price:      2_000,
			Interval:   144,
			Active:     true,
		}
		if err := s.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription %d: %v", i, err)
		}
	}

	n, err := s.CountBySubscriber(ctx, "alice")
	if err != nil {
		t.Fatalf("CountBySubscriber: %v", err)
	}
	if n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}

	for i := uint64(0); i < 3; i++ {
		id, err := s.SubscriptionIDAt(ctx, "alice", i)
		if err != nil {
			t.Fatalf("SubscriptionIDAt(%d): %v", i, err)
		}
		if id != i+1 {
			t.Fatalf("id at %d = %d, want %d", i, id, i+1)
		}
	}

	if _, err := s.SubscriptionIDAt(ctx, "alice", 3); !errors.Is(err, recur.ErrNotFound) {
		t.Fatalf("out of range err = %v, want ErrNotFound", err)
	}

	total, err := s.SubscriptionTotal(ctx)
	if err != nil {
		t.Fatalf("SubscriptionTotal: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
}

func TestApplyPayment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub := &subscription.Subscription{
		Subscriber: "alice",
		Merchant:   "bob",
		Price:      1_000_000,
		Interval:   144,
		Active:     true,
		CreatedAt:  100,
		NextDue:    100,
	}
	if err := s.CreateSubscription(ctx, sub); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	sub.Advance(150)
	rec := &payment.Record{
		SubscriptionID: sub.ID,
		Sequence:       1,
		BaseAmount:     1_000_000,
		SettleAmount:   300,
		Rate:           30_000,
		Fee:            7,
		Height:         150,
	}
	if err := s.ApplyPayment(ctx, sub, rec); err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}

	got, err := s.GetPayment(ctx, sub.ID, 1)
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if got.SettleAmount != 300 || got.Fee != 7 || got.Height != 150 {
		t.Fatalf("payment mismatch: %+v", got)
	}
	if got.Net() != 293 {
		t.Fatalf("net = %d, want 293", got.Net())
	}

	updated, err := s.GetSubscription(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetSubscription: %v", err)
	}
	if updated.LastPayment != 150 || updated.NextDue != 294 || updated.TotalPayments != 1 {
		t.Fatalf("schedule not advanced: %+v", updated)
	}

	earned, err := s.MerchantEarnings(ctx, "bob")
	if err != nil {
		t.Fatalf("MerchantEarnings: %v", err)
	}
	if earned != 293 {
		t.Fatalf("earnings = %d, want 293", earned)
	}
}

func TestMerchantEarningsUnknown(t *testing.T) {
	s := newTestStore(t)

	earned, err := s.MerchantEarnings(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("MerchantEarnings: %v", err)
	}
	if earned != 0 {
		t.Fatalf("earnings = %d, want 0", earned)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetConfig(ctx); !errors.Is(err, recur.ErrNotFound) {
		t.Fatalf("empty config err = %v, want ErrNotFound", err)
	}

	cfg := &config.Config{
		Rate:          types.Rate(30_000),
		FeeRecipient:  "treasury",
		Paused:        true,
		RateUpdatedAt: 42,
	}
	if err := s.PutConfig(ctx, cfg); err != nil {
		t.Fatalf("PutConfig: %v", err)
	}

	got, err := s.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if got.Rate != 30_000 || got.FeeRecipient != "treasury" || !got.Paused || got.RateUpdatedAt != 42 {
		t.Fatalf("config mismatch: %+v", got)
	}
}
