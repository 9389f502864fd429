// Package mongo implements store.Store on MongoDB.
//
// The engine serializes mutating operations, so the multi-document writes
// here rely on that single-writer discipline rather than on server-side
// transactions (which would require a replica set).
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/recur"
	"github.com/xraph/recur/config"
	"github.com/xraph/recur/payment"
	recurstore "github.com/xraph/recur/store"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

// Collection name constants.
const (
	colSubscriptions = "recur_subscriptions"
	colPayments      = "recur_payments"
	colIndex         = "recur_subscriber_index"
	colEarnings      = "recur_earnings"
	colConfig        = "recur_config"
	colCounters      = "recur_counters"
)

const subscriptionCounter = "subscriptions"

// compile-time interface check
var _ recurstore.Store = (*Store)(nil)

// Store implements store.Store on a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to uri and uses the named database.
func New(uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("recur/mongo: connect: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

// Migrate creates indexes and seeds the id counter.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colPayments: {{
			Keys:    bson.D{{Key: "subscription_id", Value: 1}, {Key: "sequence", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		colIndex: {{
			Keys:    bson.D{{Key: "subscriber", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		colSubscriptions: {{
			Keys: bson.D{{Key: "subscriber", Value: 1}},
		}},
	}

	for col, models := range indexes {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("recur/mongo: migrate %s indexes: %w", col, err)
		}
	}

	_, err := s.db.Collection(colCounters).UpdateOne(ctx,
		bson.M{"_id": subscriptionCounter},
		bson.M{"$setOnInsert": bson.M{"value": int64(0)}},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("recur/mongo: seed counter: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// ==================== Subscription registry ====================

func (s *Store) CreateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	var counter counterModel
	err := s.db.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": subscriptionCounter},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return fmt.Errorf("recur/mongo: next id: %w", err)
	}

	position, err := s.db.Collection(colIndex).CountDocuments(ctx,
		bson.M{"subscriber": string(sub.Subscriber)})
	if err != nil {
		return fmt.Errorf("recur/mongo: index position: %w", err)
	}

	sub.ID = uint64(counter.Value)
	if _, err := s.db.Collection(colSubscriptions).InsertOne(ctx, toSubscriptionModel(sub)); err != nil {
		return fmt.Errorf("recur/mongo: insert subscription: %w", err)
	}

	entry := indexEntryModel{
		Subscriber:     string(sub.Subscriber),
		Position:       position,
		SubscriptionID: int64(sub.ID),
	}
	if _, err := s.db.Collection(colIndex).InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("recur/mongo: insert index entry: %w", err)
	}
	return nil
}

func (s *Store) GetSubscription(ctx context.Context, id uint64) (*subscription.Subscription, error) {
	var m subscriptionModel
	err := s.db.Collection(colSubscriptions).FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, recur.ErrNotFound
		}
		return nil, fmt.Errorf("recur/mongo: get subscription: %w", err)
	}
	return fromSubscriptionModel(&m), nil
}

func (s *Store) CancelSubscription(ctx context.Context, id uint64) error {
	res, err := s.db.Collection(colSubscriptions).UpdateOne(ctx,
		bson.M{"_id": int64(id)},
		bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		return fmt.Errorf("recur/mongo: cancel subscription: %w", err)
	}
	if res.MatchedCount == 0 {
		return recur.ErrNotFound
	}
	return nil
}

func (s *Store) CountBySubscriber(ctx context.Context, subscriber types.Account) (uint64, error) {
	count, err := s.db.Collection(colIndex).CountDocuments(ctx,
		bson.M{"subscriber": string(subscriber)})
	if err != nil {
		return 0, fmt.Errorf("recur/mongo: count by subscriber: %w", err)
	}
	return uint64(count), nil
}

func (s *Store) SubscriptionIDAt(ctx context.Context, subscriber types.Account, index uint64) (uint64, error) {
	var entry indexEntryModel
	err := s.db.Collection(colIndex).FindOne(ctx,
		bson.M{"subscriber": string(subscriber), "position": int64(index)}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, recur.ErrNotFound
		}
		return 0, fmt.Errorf("recur/mongo: subscription id at: %w", err)
	}
	return uint64(entry.SubscriptionID), nil
}

func (s *Store) SubscriptionTotal(ctx context.Context) (uint64, error) {
	var counter counterModel
	err := s.db.Collection(colCounters).FindOne(ctx,
		bson.M{"_id": subscriptionCounter}).Decode(&counter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("recur/mongo: subscription total: %w", err)
	}
	return uint64(counter.Value), nil
}

// ==================== Payment ledger ====================

func (s *Store) ApplyPayment(ctx context.Context, sub *subscription.Subscription, rec *payment.Record) error {
	res, err := s.db.Collection(colSubscriptions).UpdateOne(ctx,
		bson.M{"_id": int64(sub.ID)},
		bson.M{"$set": bson.M{
			"last_payment":   int64(sub.LastPayment),
			"next_due":       int64(sub.NextDue),
			"total_payments": int64(sub.TotalPayments),
		}})
	if err != nil {
		return fmt.Errorf("recur/mongo: update subscription: %w", err)
	}
	if res.MatchedCount == 0 {
		return recur.ErrNotFound
	}

	if _, err := s.db.Collection(colPayments).InsertOne(ctx, toPaymentModel(rec)); err != nil {
		return fmt.Errorf("recur/mongo: insert payment: %w", err)
	}

	_, err = s.db.Collection(colEarnings).UpdateOne(ctx,
		bson.M{"_id": string(sub.Merchant)},
		bson.M{"$inc": bson.M{"total": int64(rec.Net())}},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("recur/mongo: credit merchant: %w", err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, subscriptionID, sequence uint64) (*payment.Record, error) {
	var m paymentModel
	err := s.db.Collection(colPayments).FindOne(ctx,
		bson.M{"subscription_id": int64(subscriptionID), "sequence": int64(sequence)}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, recur.ErrNotFound
		}
		return nil, fmt.Errorf("recur/mongo: get payment: %w", err)
	}
	return fromPaymentModel(&m), nil
}

func (s *Store) MerchantEarnings(ctx context.Context, merchant types.Account) (types.SettleAmount, error) {
	var m earningsModel
	err := s.db.Collection(colEarnings).FindOne(ctx,
		bson.M{"_id": string(merchant)}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("recur/mongo: merchant earnings: %w", err)
	}
	return types.SettleAmount(m.Total), nil
}

// ==================== Global configuration ====================

func (s *Store) GetConfig(ctx context.Context) (*config.Config, error) {
	var m configModel
	err := s.db.Collection(colConfig).FindOne(ctx, bson.M{"_id": 1}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, recur.ErrNotFound
		}
		return nil, fmt.Errorf("recur/mongo: get config: %w", err)
	}
	return &config.Config{
		Rate:          types.Rate(m.Rate),
		FeeRecipient:  types.Account(m.FeeRecipient),
		Paused:        m.Paused,
		RateUpdatedAt: uint64(m.RateUpdatedAt),
	}, nil
}

func (s *Store) PutConfig(ctx context.Context, cfg *config.Config) error {
	m := configModel{
		ID:            1,
		Rate:          int64(cfg.Rate),
		FeeRecipient:  string(cfg.FeeRecipient),
		Paused:        cfg.Paused,
		RateUpdatedAt: int64(cfg.RateUpdatedAt),
	}
	_, err := s.db.Collection(colConfig).ReplaceOne(ctx,
		bson.M{"_id": 1}, m, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("recur/mongo: put config: %w", err)
	}
	return nil
}
