package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/checkout"
	"backend/internal/models"
)

type InventoryStore struct {
	c *mongo.Collection
}

func NewInventoryStore(db *mongo.Database) *InventoryStore {
	return &InventoryStore{c: db.Collection("products")}
}

func (s *InventoryStore) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, checkout.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	product.InStock = product.Stock > 0
	return &product, nil
}

// DecrementStock only matches while stock covers qty, so the counter can
// never go negative; a zero match count means a concurrent order won the
// remaining stock.
func (s *InventoryStore) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":       id,
			"isDeleted": bson.M{"$ne": true},
			"isActive":  true,
			"stock":     bson.M{"$gte": qty},
		},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return checkout.ErrConflict
	}
	return nil
}
