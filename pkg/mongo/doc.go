// Package mongo provides MongoDB connection management and the MongoDB-backed
// subscription account store.
//
// Connections are configured from the environment (see Config) and retried a
// few times at startup, which smooths over slow container starts and Atlas
// failovers.
//
// # Usage
//
//	import (
//		"context"
//		"github.com/dmitrymomot/masky/pkg/mongo"
//	)
//
//	func main() {
//		ctx := context.Background()
//		cfg := mongo.Config{
//			ConnectionURL: "mongodb://localhost:27017",
//			Database:      "masky",
//			RetryAttempts: 3,
//		}
//
//		db, err := mongo.NewWithDatabase(ctx, cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer db.Client().Disconnect(ctx)
//
//		accounts := mongo.NewAccountStore(db, cfg.AccountsCollection)
//		if err := accounts.EnsureIndexes(ctx); err != nil {
//			log.Fatal(err)
//		}
//
//		health := mongo.Healthcheck(db.Client())
//		if err := health(ctx); err != nil {
//			log.Println("mongo is unavailable:", err)
//		}
//	}
//
// # Accounts
//
// AccountStore keeps one document per user with the user ID as _id. The
// customer_id field is indexed unique and sparse, so webhook lookups by
// billing customer are a single index hit and two users can never share a
// customer.
//
// # Error Handling
//
// Connection and query failures are joined with ErrFailedToConnectToMongo or
// ErrQueryFailed. Missing documents map to subscription.ErrAccountNotFound.
//
// # See Also
//
// Documentation for the official driver: https://pkg.go.dev/go.mongodb.org/mongo-driver/v2.
package mongo
