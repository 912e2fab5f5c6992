package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one line of a cart session. UnitPriceMinor is a display
// snapshot taken when the line was added; order creation re-prices from the
// live product document.
type CartItem struct {
	ProductID      primitive.ObjectID `bson:"productId" json:"productId"`
	Name           string             `bson:"name" json:"name"`
	Quantity       int                `bson:"quantity" json:"quantity"`
	UnitPriceMinor int64              `bson:"unitPriceMinor" json:"unitPriceMinor"`
}

// CartSession is the anonymous pre-auth cart, keyed by an unguessable
// server-minted session id. Every mutation pushes ExpiresAt forward.
type CartSession struct {
	SessionID string     `bson:"_id" json:"sessionId"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
	ExpiresAt time.Time  `bson:"expiresAt" json:"expiresAt"`
}
