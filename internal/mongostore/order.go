package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/checkout"
	"backend/internal/models"
)

type OrderStore struct {
	c *mongo.Collection
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{c: db.Collection("orders")}
}

func (s *OrderStore) Insert(ctx context.Context, o *models.Order) error {
	res, err := s.c.InsertOne(ctx, o)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		o.ID = id
	}
	return nil
}

func (s *OrderStore) FindByNumberAndPhone(ctx context.Context, orderNumber, phone string) (*models.Order, error) {
	var order models.Order
	err := s.c.FindOne(ctx, bson.M{
		"orderNumber":   orderNumber,
		"customerPhone": phone,
	}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, checkout.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
