package checkout

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const checkoutTokenType = "checkout_session"

// CheckoutClaims is the typed payload of a checkout session token. It is the
// only credential the address book and order creation accept.
type CheckoutClaims struct {
	Phone      string `json:"phone"`
	CustomerID string `json:"customerId"`
	TokenType  string `json:"type"`
	jwt.RegisteredClaims
}

// ObjectID decodes the customerId claim.
func (c *CheckoutClaims) ObjectID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.CustomerID)
}

// TokenIssuer signs and parses checkout session tokens with a symmetric key.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a checkout session token for a freshly verified phone.
func (i *TokenIssuer) Issue(phone string, customerID primitive.ObjectID) (string, error) {
	now := i.now()
	claims := CheckoutClaims{
		Phone:      phone,
		CustomerID: customerID.Hex(),
		TokenType:  checkoutTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse validates a checkout session token and returns its claims.
func (i *TokenIssuer) Parse(raw string) (*CheckoutClaims, error) {
	claims := &CheckoutClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid checkout token")
	}
	if claims.TokenType != checkoutTokenType {
		return nil, errors.New("not a checkout session token")
	}
	if claims.Phone == "" || claims.CustomerID == "" {
		return nil, errors.New("checkout token claims incomplete")
	}
	return claims, nil
}
