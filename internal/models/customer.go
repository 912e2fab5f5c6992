package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer is created (or reloaded) the first time a phone number completes
// SMS verification. Phone is the natural key, stored in E.164 form.
type Customer struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Phone     string             `bson:"phone" json:"phone"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
