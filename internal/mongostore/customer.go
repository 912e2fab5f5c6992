package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type CustomerStore struct {
	c *mongo.Collection
}

func NewCustomerStore(db *mongo.Database) *CustomerStore {
	return &CustomerStore{c: db.Collection("customers")}
}

// UpsertByPhone loads the customer for a verified phone, creating the record
// on first verification. The name is refreshed on every verification so the
// latest one a customer typed wins.
func (s *CustomerStore) UpsertByPhone(ctx context.Context, phone, name string) (*models.Customer, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var customer models.Customer
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"phone": phone},
		bson.M{
			"$set":         bson.M{"name": name, "updatedAt": now},
			"$setOnInsert": bson.M{"phone": phone, "createdAt": now},
		},
		opts,
	).Decode(&customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}
