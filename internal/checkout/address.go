package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

const (
	maxAddressesPerCustomer = 50
	minStreetLen            = 5
	postalCodeLen           = 6
)

// AddressInput is the validated shape for creating or updating an address.
type AddressInput struct {
	Street     string
	City       string
	County     string
	PostalCode string
	Notes      string
	IsDefault  bool
}

// AddressBook manages a verified customer's saved delivery addresses.
type AddressBook struct {
	addresses AddressStore
	now       func() time.Time
	newID     func() string
}

func NewAddressBook(addresses AddressStore) *AddressBook {
	return &AddressBook{
		addresses: addresses,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// ValidateAddressFields checks the delivery address rules shared by the
// address book and the guest checkout path, returning the canonical county
// spelling.
func ValidateAddressFields(street, city, county, postalCode string) (string, *Error) {
	if len([]rune(strings.TrimSpace(street))) < minStreetLen {
		return "", validationError(CodeInvalidAddress, "street must be at least 5 characters")
	}
	if strings.TrimSpace(city) == "" {
		return "", validationError(CodeInvalidAddress, "city is required")
	}
	canonical, ok := CanonicalCounty(county)
	if !ok {
		return "", validationError(CodeInvalidAddress, "county is not a Romanian county")
	}
	postal := strings.TrimSpace(postalCode)
	if len(postal) != postalCodeLen {
		return "", validationError(CodeInvalidAddress, "postal code must be exactly 6 digits")
	}
	for _, r := range postal {
		if r < '0' || r > '9' {
			return "", validationError(CodeInvalidAddress, "postal code must be exactly 6 digits")
		}
	}
	return canonical, nil
}

// Add saves a new address, enforcing the 50-address cap. The customer's
// first address always becomes the default.
func (b *AddressBook) Add(ctx context.Context, customerID primitive.ObjectID, input AddressInput) (*models.Address, error) {
	county, verr := ValidateAddressFields(input.Street, input.City, input.County, input.PostalCode)
	if verr != nil {
		return nil, verr
	}

	count, err := b.addresses.Count(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if count >= maxAddressesPerCustomer {
		return nil, conflictError(CodeAddressLimit, "address limit reached, delete one first")
	}

	isDefault := input.IsDefault || count == 0
	if isDefault {
		if err := b.addresses.ClearDefault(ctx, customerID); err != nil {
			return nil, err
		}
	}

	address := &models.Address{
		ID:         b.newID(),
		CustomerID: customerID,
		Street:     strings.TrimSpace(input.Street),
		City:       strings.TrimSpace(input.City),
		County:     county,
		PostalCode: strings.TrimSpace(input.PostalCode),
		Notes:      strings.TrimSpace(input.Notes),
		IsDefault:  isDefault,
		CreatedAt:  b.now(),
	}
	if err := b.addresses.Insert(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

// List returns the customer's addresses, default first, then most used,
// then most recently used.
func (b *AddressBook) List(ctx context.Context, customerID primitive.ObjectID) ([]models.Address, error) {
	return b.addresses.List(ctx, customerID)
}

// Update rewrites an address the customer owns.
func (b *AddressBook) Update(ctx context.Context, customerID primitive.ObjectID, addressID string, input AddressInput) (*models.Address, error) {
	county, verr := ValidateAddressFields(input.Street, input.City, input.County, input.PostalCode)
	if verr != nil {
		return nil, verr
	}

	address, err := b.getOwned(ctx, customerID, addressID)
	if err != nil {
		return nil, err
	}

	if input.IsDefault && !address.IsDefault {
		if err := b.addresses.ClearDefault(ctx, customerID); err != nil {
			return nil, err
		}
	}

	address.Street = strings.TrimSpace(input.Street)
	address.City = strings.TrimSpace(input.City)
	address.County = county
	address.PostalCode = strings.TrimSpace(input.PostalCode)
	address.Notes = strings.TrimSpace(input.Notes)
	address.IsDefault = input.IsDefault

	if err := b.addresses.Update(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

// Delete removes an address the customer owns.
func (b *AddressBook) Delete(ctx context.Context, customerID primitive.ObjectID, addressID string) error {
	if _, err := b.getOwned(ctx, customerID, addressID); err != nil {
		return err
	}
	return b.addresses.Delete(ctx, addressID, customerID)
}

// Resolve loads an address for order creation, enforcing ownership.
func (b *AddressBook) Resolve(ctx context.Context, customerID primitive.ObjectID, addressID string) (*models.Address, error) {
	return b.getOwned(ctx, customerID, addressID)
}

func (b *AddressBook) getOwned(ctx context.Context, customerID primitive.ObjectID, addressID string) (*models.Address, error) {
	address, err := b.addresses.Get(ctx, addressID)
	if errors.Is(err, ErrNotFound) {
		return nil, notFoundError(CodeAddressNotFound, "address not found")
	}
	if err != nil {
		return nil, err
	}
	if address.CustomerID != customerID {
		// Do not leak other customers' address ids.
		return nil, notFoundError(CodeAddressNotFound, "address not found")
	}
	return address, nil
}
