package checkout

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

// Store ports. The mongostore package implements them over MongoDB; the
// package tests implement them in memory. Conditional operations return
// ErrConflict when their guard filter does not match and ErrNotFound when
// the document is absent.

type VerificationStore interface {
	Get(ctx context.Context, phone string) (*models.PhoneVerification, error)
	// Put replaces (or creates) the single record for a phone.
	Put(ctx context.Context, v *models.PhoneVerification) error
	// IncrementAttempts bumps the attempt counter and returns the new value.
	IncrementAttempts(ctx context.Context, phone string) (int, error)
	Block(ctx context.Context, phone string, until time.Time) error
	// MarkVerified sets verifiedAt iff it is not already set.
	MarkVerified(ctx context.Context, phone string, at time.Time, customerID primitive.ObjectID) error
	// Consume sets consumedAt iff the record is verified and unconsumed.
	Consume(ctx context.Context, phone string, at time.Time) error
}

type CustomerStore interface {
	UpsertByPhone(ctx context.Context, phone, name string) (*models.Customer, error)
}

type RateLimitStore interface {
	// Bump resets an elapsed window to count=1 or increments a live one,
	// in a single atomic operation, and returns the resulting entry.
	Bump(ctx context.Context, key string, window time.Duration, now time.Time) (*models.RateLimitEntry, error)
	// Refund undoes one increment of a live window (floored at zero).
	Refund(ctx context.Context, key string) error
}

type CartStore interface {
	Get(ctx context.Context, sessionID string) (*models.CartSession, error)
	Put(ctx context.Context, cart *models.CartSession) error
	Delete(ctx context.Context, sessionID string) error
}

type InventoryStore interface {
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	// DecrementStock subtracts qty iff the product is live and has at least
	// qty in stock. This is the real oversell guard.
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

type AddressStore interface {
	Get(ctx context.Context, id string) (*models.Address, error)
	// List returns addresses sorted default-first, then usageCount desc,
	// then lastUsed desc.
	List(ctx context.Context, customerID primitive.ObjectID) ([]models.Address, error)
	Count(ctx context.Context, customerID primitive.ObjectID) (int64, error)
	Insert(ctx context.Context, a *models.Address) error
	Update(ctx context.Context, a *models.Address) error
	Delete(ctx context.Context, id string, customerID primitive.ObjectID) error
	ClearDefault(ctx context.Context, customerID primitive.ObjectID) error
	Touch(ctx context.Context, id string, at time.Time) error
}

type OrderStore interface {
	Insert(ctx context.Context, o *models.Order) error
	FindByNumberAndPhone(ctx context.Context, orderNumber, phone string) (*models.Order, error)
}

type SequenceStore interface {
	// Next atomically increments (upserting on first use) the counter for
	// dateKey and returns the allocated value, starting at 1.
	Next(ctx context.Context, dateKey string) (int64, error)
}

// Txn runs fn as one all-or-nothing unit of work. Every store call made with
// the ctx passed to fn joins the transaction.
type Txn interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
