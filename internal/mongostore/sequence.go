package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type SequenceStore struct {
	c *mongo.Collection
}

func NewSequenceStore(db *mongo.Database) *SequenceStore {
	return &SequenceStore{c: db.Collection("order_sequences")}
}

// Next is a single upsert-and-increment; Mongo linearizes the $inc, so the
// same value is never handed out twice for one dateKey.
func (s *SequenceStore) Next(ctx context.Context, dateKey string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var seq models.OrderSequence
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": dateKey},
		bson.M{"$inc": bson.M{"next": 1}},
		opts,
	).Decode(&seq)
	if err != nil {
		return 0, err
	}
	return seq.Next, nil
}
