package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Creation always starts at pending; later transitions are
// admin-driven.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Delivery types accepted at checkout.
const (
	DeliveryTypeCourier = "courier"
	DeliveryTypePickup  = "pickup"
)

// OrderItem is one priced line of a persisted order. Prices are in minor
// units and reflect the product price at commit time, not the cart snapshot.
type OrderItem struct {
	ProductID      primitive.ObjectID `bson:"productId" json:"productId"`
	Name           string             `bson:"name" json:"name"`
	Quantity       int                `bson:"quantity" json:"quantity"`
	UnitPriceMinor int64              `bson:"unitPriceMinor" json:"unitPriceMinor"`
	LineTotalMinor int64              `bson:"lineTotalMinor" json:"lineTotalMinor"`
}

// OrderAddress is the delivery address snapshot frozen into the order.
type OrderAddress struct {
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	County     string `bson:"county" json:"county"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Notes      string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// StatusChange is one entry of an order's status history.
type StatusChange struct {
	Status    string    `bson:"status" json:"status"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
	ChangedAt time.Time `bson:"changedAt" json:"changedAt"`
}

// Order is the persisted order document. OrderNumber is unique for the
// lifetime of the system ("ORD-YYYYMMDD-NNNNNN").
type Order struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrderNumber   string              `bson:"orderNumber" json:"orderNumber"`
	CustomerID    *primitive.ObjectID `bson:"customerId,omitempty" json:"customerId,omitempty"`
	CustomerPhone string              `bson:"customerPhone" json:"customerPhone"`
	CustomerName  string              `bson:"customerName" json:"customerName"`
	Items         []OrderItem         `bson:"items" json:"items"`
	SubtotalMinor int64               `bson:"subtotalMinor" json:"subtotalMinor"`
	DeliveryMinor int64               `bson:"deliveryMinor" json:"deliveryMinor"`
	TotalMinor    int64               `bson:"totalMinor" json:"totalMinor"`
	DeliveryType  string              `bson:"deliveryType" json:"deliveryType"`
	Address       OrderAddress        `bson:"address" json:"address"`
	Status        string              `bson:"status" json:"status"`
	StatusHistory []StatusChange      `bson:"statusHistory" json:"statusHistory"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
}

// orderTransitions is the admin-driven status machine. Cancellation is only
// allowed before preparation starts.
var orderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady},
	OrderStatusReady:     {OrderStatusDelivered},
}

// CanTransition reports whether an order status change is allowed.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
