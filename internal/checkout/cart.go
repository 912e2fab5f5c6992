package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

const (
	maxCartLines    = 50
	maxUnitsPerLine = 100
)

// CartService owns the anonymous session carts. Session ids are minted
// server-side and are the single source of truth for "which cart"; the
// service never substitutes a different cart for a client-supplied id.
type CartService struct {
	carts     CartStore
	inventory InventoryStore
	ttl       time.Duration
	now       func() time.Time
	newID     func() string
}

func NewCartService(carts CartStore, inventory InventoryStore, ttl time.Duration) *CartService {
	return &CartService{
		carts:     carts,
		inventory: inventory,
		ttl:       ttl,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Add puts qty units of a product into the cart, creating a session when
// sessionID is empty. Availability is checked against the live product
// document; the stored unit price is only a display snapshot.
func (s *CartService) Add(ctx context.Context, sessionID string, productID primitive.ObjectID, qty int) (*models.CartSession, error) {
	if qty <= 0 {
		return nil, validationError(CodeQuantityInvalid, "quantity must be greater than zero")
	}

	now := s.now()
	var cart *models.CartSession
	if sessionID == "" {
		cart = &models.CartSession{
			SessionID: s.newID(),
			CreatedAt: now,
		}
	} else {
		existing, err := s.loadLive(ctx, sessionID, now)
		if err != nil {
			return nil, err
		}
		cart = existing
	}

	product, err := s.inventory.GetProduct(ctx, productID)
	if errors.Is(err, ErrNotFound) {
		return nil, validationError(CodeProductUnavailable, "product is not available")
	}
	if err != nil {
		return nil, err
	}
	if product.IsDeleted || !product.IsActive {
		return nil, validationError(CodeProductUnavailable, "product is not available")
	}

	line := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			line = i
			break
		}
	}

	newQty := qty
	if line >= 0 {
		newQty += cart.Items[line].Quantity
	}
	if newQty > maxUnitsPerLine {
		return nil, validationError(CodeQuantityLimit, "at most 100 units of one product per cart")
	}
	if product.Stock < newQty {
		e := conflictError(CodeInsufficientStock, "not enough stock for this product")
		e.Details = map[string]interface{}{
			"productId": productID.Hex(),
			"available": product.Stock,
			"requested": newQty,
		}
		return nil, e
	}

	if line >= 0 {
		cart.Items[line].Quantity = newQty
		cart.Items[line].UnitPriceMinor = product.PriceMinor
	} else {
		if len(cart.Items) >= maxCartLines {
			return nil, validationError(CodeCartLimitExceeded, "at most 50 distinct products per cart")
		}
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:      productID,
			Name:           product.Name,
			Quantity:       qty,
			UnitPriceMinor: product.PriceMinor,
		})
	}

	s.touch(cart, now)
	if err := s.carts.Put(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Update sets the quantity of an existing line; zero removes it.
func (s *CartService) Update(ctx context.Context, sessionID string, productID primitive.ObjectID, qty int) (*models.CartSession, error) {
	if qty < 0 {
		return nil, validationError(CodeQuantityInvalid, "quantity must not be negative")
	}
	if qty > maxUnitsPerLine {
		return nil, validationError(CodeQuantityLimit, "at most 100 units of one product per cart")
	}

	now := s.now()
	cart, err := s.loadLive(ctx, sessionID, now)
	if err != nil {
		return nil, err
	}

	line := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			line = i
			break
		}
	}
	if line < 0 {
		return nil, notFoundError(CodeProductNotFound, "product is not in the cart")
	}

	if qty == 0 {
		cart.Items = append(cart.Items[:line], cart.Items[line+1:]...)
	} else {
		product, err := s.inventory.GetProduct(ctx, productID)
		if errors.Is(err, ErrNotFound) {
			return nil, validationError(CodeProductUnavailable, "product is not available")
		}
		if err != nil {
			return nil, err
		}
		if product.IsDeleted || !product.IsActive {
			return nil, validationError(CodeProductUnavailable, "product is not available")
		}
		if product.Stock < qty {
			e := conflictError(CodeInsufficientStock, "not enough stock for this product")
			e.Details = map[string]interface{}{
				"productId": productID.Hex(),
				"available": product.Stock,
				"requested": qty,
			}
			return nil, e
		}
		cart.Items[line].Quantity = qty
		cart.Items[line].UnitPriceMinor = product.PriceMinor
	}

	s.touch(cart, now)
	if err := s.carts.Put(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Get returns the cart, failing when it is missing or past its TTL. Expiry
// is evaluated lazily; the storage layer's TTL index only reclaims space.
func (s *CartService) Get(ctx context.Context, sessionID string) (*models.CartSession, error) {
	return s.loadLive(ctx, sessionID, s.now())
}

// Delete drops the cart. Missing carts are not an error.
func (s *CartService) Delete(ctx context.Context, sessionID string) error {
	return s.carts.Delete(ctx, sessionID)
}

func (s *CartService) loadLive(ctx context.Context, sessionID string, now time.Time) (*models.CartSession, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return nil, notFoundError(CodeCartNotFound, "cart not found")
	}
	if err != nil {
		return nil, err
	}
	if now.After(cart.ExpiresAt) {
		return nil, &Error{Status: 410, Code: CodeCartExpired, Message: "cart expired"}
	}
	return cart, nil
}

func (s *CartService) touch(cart *models.CartSession, now time.Time) {
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(s.ttl)
}
