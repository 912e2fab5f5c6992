package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// EnsureVerificationIndexes keeps one verification record per phone.
func EnsureVerificationIndexes(db *mongo.Database) error {
	ctx, cancel := indexCtx()
	defer cancel()

	phoneIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().SetName("phone_unique").SetUnique(true),
	}

	_, err := db.Collection("phone_verifications").Indexes().CreateOne(ctx, phoneIndex)
	if err != nil {
		log.Println("EnsureVerificationIndexes: phone index error:", err)
		return err
	}
	return nil
}

// EnsureCartIndexes adds the TTL reaper for expired cart sessions. Expiry is
// still checked lazily at use time; the index only bounds storage growth.
func EnsureCartIndexes(db *mongo.Database) error {
	ctx, cancel := indexCtx()
	defer cancel()

	ttlIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetName("expiresAt_ttl").SetExpireAfterSeconds(0),
	}

	_, err := db.Collection("cart_sessions").Indexes().CreateOne(ctx, ttlIndex)
	if err != nil {
		log.Println("EnsureCartIndexes: ttl index error:", err)
		return err
	}
	return nil
}

// EnsureOrderIndexes enforces order number uniqueness and speeds up the
// public status lookup.
func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := indexCtx()
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderNumber", Value: 1}},
			Options: options.Index().SetName("orderNumber_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "customerPhone", Value: 1}},
			Options: options.Index().SetName("customerPhone_index"),
		},
	}

	_, err := db.Collection("orders").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Println("EnsureOrderIndexes: index error:", err)
		return err
	}
	return nil
}

// EnsureCustomerIndexes keeps one customer per phone.
func EnsureCustomerIndexes(db *mongo.Database) error {
	ctx, cancel := indexCtx()
	defer cancel()

	phoneIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().SetName("phone_unique").SetUnique(true),
	}

	_, err := db.Collection("customers").Indexes().CreateOne(ctx, phoneIndex)
	if err != nil {
		log.Println("EnsureCustomerIndexes: phone index error:", err)
		return err
	}
	return nil
}

// EnsureAddressIndexes speeds up per-customer listings.
func EnsureAddressIndexes(db *mongo.Database) error {
	ctx, cancel := indexCtx()
	defer cancel()

	customerIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "customerId", Value: 1}},
		Options: options.Index().SetName("customerId_index"),
	}

	_, err := db.Collection("addresses").Indexes().CreateOne(ctx, customerIndex)
	if err != nil {
		log.Println("EnsureAddressIndexes: customerId index error:", err)
		return err
	}
	return nil
}

// EnsureAdminIndexes keeps admin emails unique.
func EnsureAdminIndexes(db *mongo.Database) error {
	ctx, cancel := indexCtx()
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique").SetUnique(true),
	}

	_, err := db.Collection("admins").Indexes().CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureAdminIndexes: email index error:", err)
		return err
	}
	return nil
}
