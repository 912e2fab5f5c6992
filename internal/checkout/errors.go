package checkout

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Storage-level sentinels returned by the store ports. Services translate
// them into API errors; they never cross the HTTP boundary themselves.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Machine-readable error codes exposed at the API boundary.
const (
	CodeInvalidPhone        = "INVALID_PHONE"
	CodeNameTooShort        = "NAME_TOO_SHORT"
	CodeSMSLimitExceeded    = "SMS_LIMIT_EXCEEDED"
	CodeIPLimitExceeded     = "IP_LIMIT_EXCEEDED"
	CodeSMSSendFailed       = "SMS_SEND_FAILED"
	CodeNoPendingCode       = "NO_PENDING_CODE"
	CodeCodeExpired         = "CODE_EXPIRED"
	CodeInvalidCode         = "INVALID_CODE"
	CodeTooManyAttempts     = "TOO_MANY_ATTEMPTS"
	CodeVerificationNeeded  = "VERIFICATION_REQUIRED"
	CodeVerificationExpired = "VERIFICATION_EXPIRED"
	CodeVerificationUsed    = "VERIFICATION_ALREADY_USED"
	CodeCartNotFound        = "CART_NOT_FOUND"
	CodeCartExpired         = "CART_EXPIRED"
	CodeCartEmpty           = "CART_EMPTY"
	CodeCartLimitExceeded   = "CART_LIMIT_EXCEEDED"
	CodeQuantityInvalid     = "QUANTITY_INVALID"
	CodeQuantityLimit       = "QUANTITY_LIMIT_EXCEEDED"
	CodeProductNotFound     = "PRODUCT_NOT_FOUND"
	CodeProductUnavailable  = "PRODUCT_UNAVAILABLE"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeInvalidAddress      = "INVALID_ADDRESS"
	CodeAddressNotFound     = "ADDRESS_NOT_FOUND"
	CodeAddressLimit        = "ADDRESS_LIMIT_EXCEEDED"
	CodeOrderNotFound       = "ORDER_NOT_FOUND"
	CodeInvalidDelivery     = "INVALID_DELIVERY_TYPE"
)

// Error is the single API-facing error shape. Status drives the HTTP
// response, Code is stable for clients, RetryAfter is set for rate limits
// and blocks, Details carries structured conflict context (e.g. which
// product ran out of stock).
type Error struct {
	Status     int
	Code       string
	Message    string
	RetryAfter time.Duration
	Details    map[string]interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func validationError(code, message string) *Error {
	return newError(http.StatusBadRequest, code, message)
}

func notFoundError(code, message string) *Error {
	return newError(http.StatusNotFound, code, message)
}

func conflictError(code, message string) *Error {
	return newError(http.StatusConflict, code, message)
}

func rateLimitedError(code, message string, retryAfter time.Duration) *Error {
	e := newError(http.StatusTooManyRequests, code, message)
	e.RetryAfter = retryAfter
	return e
}

// AsError unwraps err into an *Error if it carries one.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
