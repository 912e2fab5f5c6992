// Package mongostore implements the checkout store ports over MongoDB.
// Conditional guards live in the update filters so concurrent workers
// serialize at the storage layer, never in process memory.
package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type RateLimitStore struct {
	c *mongo.Collection
}

func NewRateLimitStore(db *mongo.Database) *RateLimitStore {
	return &RateLimitStore{c: db.Collection("rate_limits")}
}

// Bump is one atomic reset-or-increment: an aggregation-pipeline update
// evaluates the window against the pre-update document, so two concurrent
// callers can never both observe an expired window and both reset it to 1
// without one of the increments surviving.
func (s *RateLimitStore) Bump(ctx context.Context, key string, window time.Duration, now time.Time) (*models.RateLimitEntry, error) {
	cutoff := now.Add(-window)
	expired := bson.M{"$or": bson.A{
		bson.M{"$eq": bson.A{bson.M{"$ifNull": bson.A{"$windowStart", nil}}, nil}},
		bson.M{"$lt": bson.A{"$windowStart", cutoff}},
	}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"count": bson.M{"$cond": bson.A{
				expired,
				1,
				bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$count", 0}}, 1}},
			}},
			"windowStart": bson.M{"$cond": bson.A{expired, now, "$windowStart"}},
		}}},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var entry models.RateLimitEntry
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": key}, pipeline, opts).Decode(&entry)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *RateLimitStore) Refund(ctx context.Context, key string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": key, "count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"count": -1}},
	)
	return err
}
