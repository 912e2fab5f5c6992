package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/checkout"
	"backend/internal/models"
)

type CartStore struct {
	c *mongo.Collection
}

func NewCartStore(db *mongo.Database) *CartStore {
	return &CartStore{c: db.Collection("cart_sessions")}
}

func (s *CartStore) Get(ctx context.Context, sessionID string) (*models.CartSession, error) {
	var cart models.CartSession
	err := s.c.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return nil, checkout.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *CartStore) Put(ctx context.Context, cart *models.CartSession) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": cart.SessionID}, cart, opts)
	return err
}

func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": sessionID})
	return err
}
