package checkout

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
	"backend/internal/phone"
)

// GuestInfo is the identity + address payload of the guest checkout path.
// The phone must still have completed SMS verification; it is consumed
// exactly like the returning-customer path.
type GuestInfo struct {
	Name       string
	Phone      string
	Street     string
	City       string
	County     string
	PostalCode string
	Notes      string
}

// PlaceOrderInput is everything the coordinator needs for one attempt.
// TokenPhone/TokenCustomerID come from a parsed checkout session token and
// are empty for guests.
type PlaceOrderInput struct {
	CartSessionID   string
	AddressID       string
	Guest           *GuestInfo
	DeliveryType    string
	TokenPhone      string
	TokenCustomerID primitive.ObjectID
}

// OrderService is the order creation coordinator. PlaceOrder reconciles the
// verified identity, the cart, live inventory and pricing, and the day's
// order sequence inside a single transaction.
type OrderService struct {
	verifications VerificationStore
	carts         CartStore
	inventory     InventoryStore
	orders        OrderStore
	sequences     SequenceStore
	addressBook   *AddressBook
	txn           Txn

	deliveryFeeMinor  int64
	freeDeliveryMinor int64
	verificationTTL   time.Duration
	now               func() time.Time
}

func NewOrderService(
	verifications VerificationStore,
	carts CartStore,
	inventory InventoryStore,
	orders OrderStore,
	sequences SequenceStore,
	addressBook *AddressBook,
	txn Txn,
	deliveryFeeMinor, freeDeliveryMinor int64,
	verificationTTL time.Duration,
) *OrderService {
	return &OrderService{
		verifications:     verifications,
		carts:             carts,
		inventory:         inventory,
		orders:            orders,
		sequences:         sequences,
		addressBook:       addressBook,
		txn:               txn,
		deliveryFeeMinor:  deliveryFeeMinor,
		freeDeliveryMinor: freeDeliveryMinor,
		verificationTTL:   verificationTTL,
		now:               time.Now,
	}
}

// PlaceOrder runs the checkout pipeline. On any failure nothing is visible:
// no order, no stock change, cart untouched, verification unconsumed.
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if strings.TrimSpace(input.CartSessionID) == "" {
		return nil, notFoundError(CodeCartNotFound, "cart not found")
	}

	deliveryType := input.DeliveryType
	if deliveryType == "" {
		deliveryType = models.DeliveryTypeCourier
	}
	if deliveryType != models.DeliveryTypeCourier && deliveryType != models.DeliveryTypePickup {
		return nil, validationError(CodeInvalidDelivery, "delivery type must be courier or pickup")
	}

	var (
		orderPhone   string
		orderName    string
		customerID   *primitive.ObjectID
		orderAddress models.OrderAddress
		addressID    string
	)

	switch {
	case input.AddressID != "":
		// Returning-customer path: the checkout token is mandatory and the
		// address must belong to its customer.
		if input.TokenPhone == "" || input.TokenCustomerID.IsZero() {
			return nil, newError(http.StatusUnauthorized, CodeVerificationNeeded, "phone verification required")
		}
		address, err := s.addressBook.Resolve(ctx, input.TokenCustomerID, input.AddressID)
		if err != nil {
			return nil, err
		}
		orderPhone = input.TokenPhone
		id := input.TokenCustomerID
		customerID = &id
		addressID = address.ID
		orderAddress = models.OrderAddress{
			Street:     address.Street,
			City:       address.City,
			County:     address.County,
			PostalCode: address.PostalCode,
			Notes:      address.Notes,
		}

	case input.Guest != nil:
		normalized, err := phone.Normalize(input.Guest.Phone)
		if err != nil {
			return nil, validationError(CodeInvalidPhone, "phone must be a Romanian mobile number")
		}
		if len([]rune(strings.TrimSpace(input.Guest.Name))) < minCustomerNameLen {
			return nil, validationError(CodeNameTooShort, "name must be at least 3 characters")
		}
		county, verr := ValidateAddressFields(input.Guest.Street, input.Guest.City, input.Guest.County, input.Guest.PostalCode)
		if verr != nil {
			return nil, verr
		}
		orderPhone = normalized
		orderName = strings.TrimSpace(input.Guest.Name)
		orderAddress = models.OrderAddress{
			Street:     strings.TrimSpace(input.Guest.Street),
			City:       strings.TrimSpace(input.Guest.City),
			County:     county,
			PostalCode: strings.TrimSpace(input.Guest.PostalCode),
			Notes:      strings.TrimSpace(input.Guest.Notes),
		}

	default:
		return nil, validationError(CodeInvalidAddress, "either an address id or guest customer info is required")
	}

	var order *models.Order
	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		now := s.now()

		verification, err := s.verifications.Get(ctx, orderPhone)
		if errors.Is(err, ErrNotFound) {
			return newError(http.StatusUnauthorized, CodeVerificationNeeded, "phone verification required")
		}
		if err != nil {
			return err
		}
		if verification.VerifiedAt == nil {
			return newError(http.StatusUnauthorized, CodeVerificationNeeded, "phone verification required")
		}
		if verification.ConsumedAt != nil {
			return conflictError(CodeVerificationUsed, "this verification was already used for an order")
		}
		if now.After(verification.VerifiedAt.Add(s.verificationTTL)) {
			return newError(http.StatusUnauthorized, CodeVerificationExpired, "verification expired, verify your phone again")
		}
		if orderName == "" {
			orderName = verification.Name
		}
		if customerID == nil {
			customerID = verification.CustomerID
		}

		cart, err := s.carts.Get(ctx, input.CartSessionID)
		if errors.Is(err, ErrNotFound) {
			return notFoundError(CodeCartNotFound, "cart not found")
		}
		if err != nil {
			return err
		}
		if now.After(cart.ExpiresAt) {
			return &Error{Status: 410, Code: CodeCartExpired, Message: "cart expired"}
		}
		if len(cart.Items) == 0 {
			return validationError(CodeCartEmpty, "cart is empty")
		}

		// Validate and re-price every line against the live inventory. The
		// cart's snapshots are never trusted for money.
		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			product, err := s.inventory.GetProduct(ctx, line.ProductID)
			if errors.Is(err, ErrNotFound) {
				return s.productGone(line.ProductID)
			}
			if err != nil {
				return err
			}
			if product.IsDeleted {
				return s.productGone(line.ProductID)
			}
			if !product.IsActive {
				return conflictError(CodeProductUnavailable, "a product in the cart is no longer available")
			}
			if product.Stock < line.Quantity {
				return s.outOfStock(line.ProductID, product.Stock, line.Quantity)
			}
			items = append(items, models.OrderItem{
				ProductID:      product.ID,
				Name:           product.Name,
				Quantity:       line.Quantity,
				UnitPriceMinor: product.PriceMinor,
				LineTotalMinor: product.PriceMinor * int64(line.Quantity),
			})
		}

		subtotal := Subtotal(items)
		fee := DeliveryFee(subtotal, s.deliveryFeeMinor, s.freeDeliveryMinor)

		dateKey := DateKey(now)
		seq, err := s.sequences.Next(ctx, dateKey)
		if err != nil {
			return err
		}

		// The step-3 stock checks above are advisory; this conditional
		// decrement is what actually prevents overselling under concurrency.
		for i, item := range items {
			if err := s.inventory.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, ErrConflict) {
					available := 0
					if p, perr := s.inventory.GetProduct(ctx, item.ProductID); perr == nil {
						available = p.Stock
					}
					return s.outOfStock(item.ProductID, available, items[i].Quantity)
				}
				return err
			}
		}

		order = &models.Order{
			OrderNumber:   FormatOrderNumber(dateKey, seq),
			CustomerID:    customerID,
			CustomerPhone: orderPhone,
			CustomerName:  orderName,
			Items:         items,
			SubtotalMinor: subtotal,
			DeliveryMinor: fee,
			TotalMinor:    subtotal + fee,
			DeliveryType:  deliveryType,
			Address:       orderAddress,
			Status:        models.OrderStatusPending,
			StatusHistory: []models.StatusChange{{
				Status:    models.OrderStatusPending,
				ChangedAt: now,
			}},
			CreatedAt: now,
		}
		if err := s.orders.Insert(ctx, order); err != nil {
			return err
		}

		// Consuming the verification here, inside the transaction, is what
		// makes a replayed request fail instead of minting a second order.
		if err := s.verifications.Consume(ctx, orderPhone, now); err != nil {
			if errors.Is(err, ErrConflict) {
				return conflictError(CodeVerificationUsed, "this verification was already used for an order")
			}
			return err
		}
		if addressID != "" {
			if err := s.addressBook.addresses.Touch(ctx, addressID, now); err != nil {
				return err
			}
		}

		return s.carts.Delete(ctx, input.CartSessionID)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[ORDER] [INFO] order %s created for %s (%d items, total %d)",
		order.OrderNumber, phone.Mask(order.CustomerPhone), len(order.Items), order.TotalMinor)
	return order, nil
}

// Status is the public read-only lookup by order number plus phone.
func (s *OrderService) Status(ctx context.Context, orderNumber, rawPhone string) (*models.Order, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return nil, validationError(CodeInvalidPhone, "phone must be a Romanian mobile number")
	}
	order, err := s.orders.FindByNumberAndPhone(ctx, strings.TrimSpace(orderNumber), normalized)
	if errors.Is(err, ErrNotFound) {
		return nil, notFoundError(CodeOrderNotFound, "order not found")
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) productGone(id primitive.ObjectID) *Error {
	e := conflictError(CodeProductNotFound, "a product in the cart no longer exists, refresh your cart")
	e.Details = map[string]interface{}{"productId": id.Hex()}
	return e
}

func (s *OrderService) outOfStock(id primitive.ObjectID, available, requested int) *Error {
	e := conflictError(CodeInsufficientStock, "stock changed while ordering, refresh your cart")
	e.Details = map[string]interface{}{
		"productId": id.Hex(),
		"available": available,
		"requested": requested,
	}
	return e
}
