package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PhoneVerification is the single active verification record for a phone
// number. The code is single-use: ConsumedAt is set atomically with order
// persistence so one verified session can never back two orders.
type PhoneVerification struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Phone        string              `bson:"phone" json:"phone"`
	Name         string              `bson:"name" json:"name"`
	Code         string              `bson:"code" json:"-"`
	CodeExpires  time.Time           `bson:"codeExpires" json:"codeExpires"`
	Attempts     int                 `bson:"attempts" json:"attempts"`
	LastSentAt   time.Time           `bson:"lastSentAt" json:"lastSentAt"`
	BlockedUntil *time.Time          `bson:"blockedUntil,omitempty" json:"blockedUntil,omitempty"`
	VerifiedAt   *time.Time          `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
	ConsumedAt   *time.Time          `bson:"consumedAt,omitempty" json:"consumedAt,omitempty"`
	CustomerID   *primitive.ObjectID `bson:"customerId,omitempty" json:"customerId,omitempty"`
}
