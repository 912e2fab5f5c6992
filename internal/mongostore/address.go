package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/checkout"
	"backend/internal/models"
)

type AddressStore struct {
	c *mongo.Collection
}

func NewAddressStore(db *mongo.Database) *AddressStore {
	return &AddressStore{c: db.Collection("addresses")}
}

func (s *AddressStore) Get(ctx context.Context, id string) (*models.Address, error) {
	var address models.Address
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&address)
	if err == mongo.ErrNoDocuments {
		return nil, checkout.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (s *AddressStore) List(ctx context.Context, customerID primitive.ObjectID) ([]models.Address, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "isDefault", Value: -1},
		{Key: "usageCount", Value: -1},
		{Key: "lastUsed", Value: -1},
	})
	cursor, err := s.c.Find(ctx, bson.M{"customerId": customerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var addresses []models.Address
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *AddressStore) Count(ctx context.Context, customerID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"customerId": customerID})
}

func (s *AddressStore) Insert(ctx context.Context, a *models.Address) error {
	_, err := s.c.InsertOne(ctx, a)
	return err
}

func (s *AddressStore) Update(ctx context.Context, a *models.Address) error {
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": a.ID, "customerId": a.CustomerID}, a)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return checkout.ErrNotFound
	}
	return nil
}

func (s *AddressStore) Delete(ctx context.Context, id string, customerID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "customerId": customerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return checkout.ErrNotFound
	}
	return nil
}

func (s *AddressStore) ClearDefault(ctx context.Context, customerID primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"customerId": customerID, "isDefault": true},
		bson.M{"$set": bson.M{"isDefault": false}},
	)
	return err
}

func (s *AddressStore) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"usageCount": 1},
			"$set": bson.M{"lastUsed": at},
		},
	)
	return err
}
