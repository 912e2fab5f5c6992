package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the persisted catalog document. PriceMinor is the authoritative
// unit price in minor currency units (bani); order creation always re-reads
// it instead of trusting cart snapshots.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	PriceMinor  int64              `bson:"priceMinor" json:"priceMinor"`
	Unit        string             `bson:"unit,omitempty" json:"unit,omitempty"`
	Stock       int                `bson:"stock" json:"stock"`
	InStock     bool               `bson:"-" json:"inStock"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	IsDeleted   bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt   *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
