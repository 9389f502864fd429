package mongo

import (
	"github.com/xraph/recur/payment"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

// ==================== Subscription models ====================

type subscriptionModel struct {
	ID            int64  `bson:"_id"`
	Subscriber    string `bson:"subscriber"`
	Merchant      string `bson:"merchant"`
	Price         int64  `bson:"price"`
	Interval      int64  `bson:"interval"`
	Active        bool   `bson:"active"`
	CreatedAt     int64  `bson:"created_at"`
	LastPayment   int64  `bson:"last_payment"`
	NextDue       int64  `bson:"next_due"`
	TotalPayments int64  `bson:"total_payments"`
}

func toSubscriptionModel(s *subscription.Subscription) *subscriptionModel {
	return &subscriptionModel{
		ID:            int64(s.ID),
		Subscriber:    string(s.Subscriber),
		Merchant:      string(s.Merchant),
		Price:         int64(s.Price),
		Interval:      int64(s.Interval),
		Active:        s.Active,
		CreatedAt:     int64(s.CreatedAt),
		LastPayment:   int64(s.LastPayment),
		NextDue:       int64(s.NextDue),
		TotalPayments: int64(s.TotalPayments),
	}
}

func fromSubscriptionModel(m *subscriptionModel) *subscription.Subscription {
	return &subscription.Subscription{
		ID:            uint64(m.ID),
		Subscriber:    types.Account(m.Subscriber),
		Merchant:      types.Account(m.Merchant),
		Price:         types.BaseAmount(m.Price),
		Interval:      uint64(m.Interval),
		Active:        m.Active,
		CreatedAt:     uint64(m.CreatedAt),
		LastPayment:   uint64(m.LastPayment),
		NextDue:       uint64(m.NextDue),
		TotalPayments: uint64(m.TotalPayments),
	}
}

// ==================== Payment models ====================

type paymentModel struct {
	SubscriptionID int64 `bson:"subscription_id"`
	Sequence       int64 `bson:"sequence"`
	BaseAmount     int64 `bson:"base_amount"`
	SettleAmount   int64 `bson:"settle_amount"`
	Rate           int64 `bson:"rate"`
	Fee            int64 `bson:"fee"`
	Height         int64 `bson:"height"`
}

func toPaymentModel(r *payment.Record) *paymentModel {
	return &paymentModel{
		SubscriptionID: int64(r.SubscriptionID),
		Sequence:       int64(r.Sequence),
		BaseAmount:     int64(r.BaseAmount),
		SettleAmount:   int64(r.SettleAmount),
		Rate:           int64(r.Rate),
		Fee:            int64(r.Fee),
		Height:         int64(r.Height),
	}
}

func fromPaymentModel(m *paymentModel) *payment.Record {
	return &payment.Record{
		SubscriptionID: uint64(m.SubscriptionID),
		Sequence:       uint64(m.Sequence),
		BaseAmount:     types.BaseAmount(m.BaseAmount),
		SettleAmount:   types.SettleAmount(m.SettleAmount),
		Rate:           types.Rate(m.Rate),
		Fee:            types.SettleAmount(m.Fee),
		Height:         uint64(m.Height),
	}
}

// ==================== Index / earnings / config models ====================

type indexEntryModel struct {
	Subscriber     string `bson:"subscriber"`
	Position       int64  `bson:"position"`
	SubscriptionID int64  `bson:"subscription_id"`
}

type earningsModel struct {
	Merchant string `bson:"_id"`
	Total    int64  `bson:"total"`
}

type configModel struct {
	ID            int    `bson:"_id"`
	Rate          int64  `bson:"rate"`
	FeeRecipient  string `bson:"fee_recipient"`
	Paused        bool   `bson:"paused"`
	RateUpdatedAt int64  `bson:"rate_updated_at"`
}

type counterModel struct {
	Name  string `bson:"_id"`
	Value int64  `bson:"value"`
}
