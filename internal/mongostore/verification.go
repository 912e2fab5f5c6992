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

type VerificationStore struct {
	c *mongo.Collection
}

func NewVerificationStore(db *mongo.Database) *VerificationStore {
	return &VerificationStore{c: db.Collection("phone_verifications")}
}

func (s *VerificationStore) Get(ctx context.Context, phone string) (*models.PhoneVerification, error) {
	var v models.PhoneVerification
	err := s.c.FindOne(ctx, bson.M{"phone": phone}).Decode(&v)
	if err == mongo.ErrNoDocuments {
		return nil, checkout.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Put replaces the phone's record wholesale; the unique index on phone
// keeps it single.
func (s *VerificationStore) Put(ctx context.Context, v *models.PhoneVerification) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.c.ReplaceOne(ctx, bson.M{"phone": v.Phone}, v, opts)
	return err
}

func (s *VerificationStore) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var v models.PhoneVerification
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"phone": phone},
		bson.M{"$inc": bson.M{"attempts": 1}},
		opts,
	).Decode(&v)
	if err == mongo.ErrNoDocuments {
		return 0, checkout.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return v.Attempts, nil
}

func (s *VerificationStore) Block(ctx context.Context, phone string, until time.Time) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"phone": phone},
		bson.M{"$set": bson.M{"blockedUntil": until}},
	)
	return err
}

func (s *VerificationStore) MarkVerified(ctx context.Context, phone string, at time.Time, customerID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"phone": phone, "verifiedAt": nil},
		bson.M{"$set": bson.M{"verifiedAt": at, "customerId": customerID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return checkout.ErrConflict
	}
	return nil
}

func (s *VerificationStore) Consume(ctx context.Context, phone string, at time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"phone":      phone,
			"verifiedAt": bson.M{"$ne": nil},
			"consumedAt": nil,
		},
		bson.M{"$set": bson.M{"consumedAt": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return checkout.ErrConflict
	}
	return nil
}
