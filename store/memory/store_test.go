package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/recur"
	"github.com/xraph/recur/config"
	"github.com/xraph/recur/payment"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

func newSub() *subscription.Subscription {
	return &subscription.Subscription{
		Subscriber: "alice",
		Merchant:   "bob",
		Price:      1_000_000,
		Interval:   144,
		Active:     true,
		CreatedAt:  100,
		NextDue:    244,
	}
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	for want := uint64(1); want <= 3; want++ {
		sub := newSub()
		if err := s.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription: %v", err)
		}
		if sub.ID != want {
			t.Fatalf("id = %d, want %d", sub.ID, want)
		}
	}

	total, err := s.SubscriptionTotal(ctx)
	if err != nil {
		t.Fatalf("SubscriptionTotal: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	sub := newSub()
	if err := s.CreateSubscription(ctx, sub); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	got, err := s.GetSubscription(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetSubscription: %v", err)
	}
	got.Active = false
	got.Price = 0

	again, err := s.GetSubscription(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetSubscription: %v", err)
	}
	if !again.Active || again.Price != 1_000_000 {
		t.Fatalf("caller mutation leaked into store: %+v", again)
	}
}

func TestCancelSubscription(t *testing.T) {
	s := New()
	ctx := context.Background()

	sub := newSub()
	if err := s.CreateSubscription(ctx, sub); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if err := s.CancelSubscription(ctx, sub.ID); err != nil {
		t.Fatalf("CancelSubscription: %v", err)
	}
	got, _ := s.GetSubscription(ctx, sub.ID)
	if got.Active {
		t.Fatal("still active after cancel")
	}

	if err := s.CancelSubscription(ctx, 42); !errors.Is(err, recur.ErrNotFound) {
		t.Fatalf("unknown id err = %v, want ErrNotFound", err)
	}
}

func TestSubscriberIndex(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.CreateSubscription(ctx, newSub()); err != nil {
			t.Fatalf("CreateSubscription: %v", err)
		}
	}

	n, err := s.CountBySubscriber(ctx, "alice")
	if err != nil {
		t.Fatalf("CountBySubscriber: %v", err)
	}
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}

	id, err := s.SubscriptionIDAt(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("SubscriptionIDAt: %v", err)
	}
	if id != 2 {
		t.Fatalf("id at 1 = %d, want 2", id)
	}
	if _, err := s.SubscriptionIDAt(ctx, "alice", 2); !errors.Is(err, recur.ErrNotFound) {
		t.Fatalf("out of range err = %v, want ErrNotFound", err)
	}
	if _, err := s.SubscriptionIDAt(ctx, "nobody", 0); !errors.Is(err, recur.ErrNotFound) {
		t.Fatalf("unknown account err = %v, want ErrNotFound", err)
	}
}

func TestApplyPayment(t *testing.T) {
	s := New()
	ctx := context.Background()

	sub := newSub()
	if err := s.CreateSubscription(ctx, sub); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	sub.Advance(244)
	rec := &payment.Record{
		SubscriptionID: sub.ID,
		Sequence:       1,
		BaseAmount:     1_000_000,
		SettleAmount:   300,
		Rate:           30_000,
		Fee:            7,
		Height:         244,
	}
	if err := s.ApplyPayment(ctx, sub, rec); err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}

	got, err := s.GetPayment(ctx, sub.ID, 1)
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if got.SettleAmount != 300 || got.Net() != 293 {
		t.Fatalf("record = %+v", got)
	}

	updated, _ := s.GetSubscription(ctx, sub.ID)
	if updated.TotalPayments != 1 || updated.NextDue != 388 {
		t.Fatalf("schedule not persisted: %+v", updated)
	}

	earned, err := s.MerchantEarnings(ctx, "bob")
	if err != nil {
		t.Fatalf("MerchantEarnings: %v", err)
	}
	if earned != 293 {
		t.Fatalf("earnings = %d, want 293", earned)
	}

	if _, err := s.GetPayment(ctx, sub.ID, 2); !errors.Is(err, recur.ErrNotFound) {
		t.Fatalf("missing sequence err = %v, want ErrNotFound", err)
	}
}

func TestApplyPaymentRejectsGaps(t *testing.T) {
	s := New()
	ctx := context.Background()

	sub := newSub()
	if err := s.CreateSubscription(ctx, sub); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	sub.Advance(244)
	rec := &payment.Record{SubscriptionID: sub.ID, Sequence: 2, SettleAmount: 300, Fee: 7, Height: 244}
	if err := s.ApplyPayment(ctx, sub, rec); !errors.Is(err, recur.ErrTransactionFailed) {
		t.Fatalf("gap err = %v, want ErrTransactionFailed", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetConfig(ctx); !errors.Is(err, recur.ErrNotFound) {
		t.Fatalf("empty config err = %v, want ErrNotFound", err)
	}

	cfg := &config.Config{Rate: 30_000, FeeRecipient: "treasury", RateUpdatedAt: 100}
	if err := s.PutConfig(ctx, cfg); err != nil {
		t.Fatalf("PutConfig: %v", err)
	}

	got, err := s.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	got.Paused = true // caller copy only

	again, _ := s.GetConfig(ctx)
	if again.Paused {
		t.Fatal("caller mutation leaked into store")
	}
	if again.Rate != 30_000 || again.FeeRecipient != types.Account("treasury") {
		t.Fatalf("config = %+v", again)
	}
}
