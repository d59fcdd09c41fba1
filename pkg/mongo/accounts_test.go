package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/masky/pkg/subscription"
)

func TestAccountDocument(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	t.Run("free account omits billing fields", func(t *testing.T) {
		t.Parallel()

		doc := toDocument(&subscription.Account{UserID: "uid_1"}, now)
		raw, err := bson.Marshal(doc)
		require.NoError(t, err)

		assert.Equal(t, "uid_1", bson.Raw(raw).Lookup("_id").StringValue())
		assert.Equal(t, "free", bson.Raw(raw).Lookup("tier").StringValue())
		_, err = bson.Raw(raw).LookupErr("customer_id")
		assert.Error(t, err, "empty customer must stay out of the sparse index")
		_, err = bson.Raw(raw).LookupErr("current_period_end")
		assert.Error(t, err)
	})

	t.Run("paid account round trip", func(t *testing.T) {
		t.Parallel()

		end := time.Date(2026, 11, 19, 0, 0, 0, 0, time.UTC)
		in := &subscription.Account{
			UserID:            "uid_1",
			Email:             "jenny@example.com",
			CustomerID:        "cus_1",
			SubscriptionID:    "sub_1",
			Tier:              subscription.TierPro,
			Status:            subscription.StatusActive,
			CurrentPeriodEnd:  end,
			CancelAtPeriodEnd: true,
		}

		raw, err := bson.Marshal(toDocument(in, now))
		require.NoError(t, err)

		var doc accountDocument
		require.NoError(t, bson.Unmarshal(raw, &doc))
		out := doc.toAccount()

		assert.Equal(t, "cus_1", out.CustomerID)
		assert.Equal(t, subscription.TierPro, out.Tier)
		assert.True(t, out.CancelAtPeriodEnd)
		assert.True(t, end.Equal(out.CurrentPeriodEnd))
		assert.True(t, now.Equal(out.UpdatedAt))
	})

	t.Run("unknown stored tier reads as free", func(t *testing.T) {
		t.Parallel()
		acc := accountDocument{UserID: "uid_1", Tier: "legacy_gold"}.toAccount()
		assert.Equal(t, subscription.TierFree, acc.Tier)
	})
}

// TestAccountStore_Integration runs against a live server when
// MONGODB_TEST_URL is set.
func TestAccountStore_Integration(t *testing.T) {
	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := Config{
		ConnectionURL:  url,
		Database:       "masky_test_" + bson.NewObjectID().Hex(),
		ConnectTimeout: 5 * time.Second,
		MaxPoolSize:    5,
		RetryAttempts:  1,
	}
	db, err := NewWithDatabase(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = db.Client().Disconnect(context.Background())
	})

	store := NewAccountStore(db, "")
	require.NoError(t, store.EnsureIndexes(ctx))

	_, err = store.Get(ctx, "uid_1")
	assert.ErrorIs(t, err, subscription.ErrAccountNotFound)

	require.NoError(t, store.Save(ctx, &subscription.Account{UserID: "uid_1", CustomerID: "cus_1", Tier: subscription.TierStandard}))
	require.NoError(t, store.Save(ctx, &subscription.Account{UserID: "uid_2"}))
	require.NoError(t, store.Save(ctx, &subscription.Account{UserID: "uid_3"}))

	got, err := store.FindByCustomerID(ctx, "cus_1")
	require.NoError(t, err)
	assert.Equal(t, "uid_1", got.UserID)
	assert.Equal(t, subscription.TierStandard, got.Tier)

	got.Tier = subscription.TierPro
	require.NoError(t, store.Save(ctx, got))

	again, err := store.Get(ctx, "uid_1")
	require.NoError(t, err)
	assert.Equal(t, subscription.TierPro, again.Tier)

	err = store.Save(ctx, &subscription.Account{UserID: "uid_4", CustomerID: "cus_1"})
	assert.ErrorIs(t, err, ErrQueryFailed)

	require.NoError(t, Healthcheck(db.Client())(ctx))
}
