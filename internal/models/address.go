package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is a saved delivery address belonging to exactly one verified
// customer. At most one address per customer has IsDefault set.
type Address struct {
	ID         string             `bson:"_id" json:"id"`
	CustomerID primitive.ObjectID `bson:"customerId" json:"-"`
	Street     string             `bson:"street" json:"street"`
	City       string             `bson:"city" json:"city"`
	County     string             `bson:"county" json:"county"`
	PostalCode string             `bson:"postalCode" json:"postalCode"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	IsDefault  bool               `bson:"isDefault" json:"isDefault"`
	UsageCount int                `bson:"usageCount" json:"usageCount"`
	LastUsed   *time.Time         `bson:"lastUsed,omitempty" json:"lastUsed,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
