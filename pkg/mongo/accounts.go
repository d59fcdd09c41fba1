package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/masky/pkg/subscription"
)

// DefaultAccountsCollection holds one document per user.
const DefaultAccountsCollection = "users"

// AccountStore persists subscription accounts in a MongoDB collection, one
// document per user keyed by user ID.
type AccountStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ subscription.AccountStore = (*AccountStore)(nil)

// NewAccountStore returns a store over db's accounts collection. Call
// EnsureIndexes once at startup.
func NewAccountStore(db *mongo.Database, collection string) *AccountStore {
	if collection == "" {
		collection = DefaultAccountsCollection
	}
	return &AccountStore{
		coll: db.Collection(collection),
		now:  time.Now,
	}
}

// EnsureIndexes creates the customer lookup index. Accounts without a
// customer are left out of it.
func (s *AccountStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "customer_id", Value: 1}},
		Options: options.Index().SetName("customer_id_unique").SetUnique(true).SetSparse(true),
	})
	if err != nil {
		return errors.Join(ErrIndexCreation, err)
	}
	return nil
}

func (s *AccountStore) Get(ctx context.Context, userID string) (*subscription.Account, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: userID}})
}

func (s *AccountStore) FindByCustomerID(ctx context.Context, customerID string) (*subscription.Account, error) {
	if customerID == "" {
		return nil, subscription.ErrAccountNotFound
	}
	return s.findOne(ctx, bson.D{{Key: "customer_id", Value: customerID}})
}

// Save upserts the account document.
func (s *AccountStore) Save(ctx context.Context, account *subscription.Account) error {
	if account == nil || account.UserID == "" {
		return subscription.ErrMissingUserID
	}

	doc := toDocument(account, s.now())
	_, err := s.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: doc.UserID}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Join(ErrQueryFailed, err)
	}
	return nil
}

func (s *AccountStore) findOne(ctx context.Context, filter bson.D) (*subscription.Account, error) {
	var doc accountDocument
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, subscription.ErrAccountNotFound
	case err != nil:
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return doc.toAccount(), nil
}

type accountDocument struct {
	UserID            string     `bson:"_id"`
	Email             string     `bson:"email,omitempty"`
	CustomerID        string     `bson:"customer_id,omitempty"`
	SubscriptionID    string     `bson:"subscription_id,omitempty"`
	Tier              string     `bson:"tier"`
	Status            string     `bson:"status,omitempty"`
	CurrentPeriodEnd  *time.Time `bson:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool       `bson:"cancel_at_period_end"`
	UpdatedAt         time.Time  `bson:"updated_at"`
}

func toDocument(a *subscription.Account, now time.Time) accountDocument {
	doc := accountDocument{
		UserID:            a.UserID,
		Email:             a.Email,
		CustomerID:        a.CustomerID,
		SubscriptionID:    a.SubscriptionID,
		Tier:              string(a.EffectiveTier()),
		Status:            string(a.Status),
		CancelAtPeriodEnd: a.CancelAtPeriodEnd,
		UpdatedAt:         now.UTC(),
	}
	if !a.CurrentPeriodEnd.IsZero() {
		end := a.CurrentPeriodEnd.UTC()
		doc.CurrentPeriodEnd = &end
	}
	return doc
}

func (d accountDocument) toAccount() *subscription.Account {
	acc := &subscription.Account{
		UserID:            d.UserID,
		Email:             d.Email,
		CustomerID:        d.CustomerID,
		SubscriptionID:    d.SubscriptionID,
		Tier:              subscription.Tier(d.Tier),
		Status:            subscription.Status(d.Status),
		CancelAtPeriodEnd: d.CancelAtPeriodEnd,
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
	acc.Tier = acc.EffectiveTier()
	if d.CurrentPeriodEnd != nil {
		acc.CurrentPeriodEnd = d.CurrentPeriodEnd.UTC()
	}
	return acc
}
