package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"backend/internal/checkout"
	"backend/internal/middleware"
)

type orderAddressRequest struct {
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	County     string `json:"county" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Notes      string `json:"notes"`
}

type orderCustomerInfoRequest struct {
	Name    string              `json:"name" binding:"required"`
	Phone   string              `json:"phone" binding:"required"`
	Address orderAddressRequest `json:"address" binding:"required"`
}

type createOrderRequest struct {
	CartSessionID string                    `json:"cart_session_id" binding:"required"`
	AddressID     string                    `json:"address_id"`
	CustomerInfo  *orderCustomerInfoRequest `json:"customer_info"`
	DeliveryType  string                    `json:"delivery_type"`
}

// CreateOrder runs the checkout pipeline. The bearer checkout token is
// required for the saved-address path and optional for guests (whose phone
// must still be verified).
func CreateOrder(orders *checkout.OrderService, tokens *checkout.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		input := checkout.PlaceOrderInput{
			CartSessionID: strings.TrimSpace(req.CartSessionID),
			AddressID:     strings.TrimSpace(req.AddressID),
			DeliveryType:  strings.TrimSpace(req.DeliveryType),
		}

		if claims, err := middleware.ParseCheckoutHeader(c, tokens); err == nil {
			customerID, idErr := claims.ObjectID()
			if idErr != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"code": checkout.CodeVerificationNeeded, "message": "unauthorized"})
				return
			}
			input.TokenPhone = claims.Phone
			input.TokenCustomerID = customerID
		} else if strings.TrimSpace(c.GetHeader("Authorization")) != "" {
			// A present-but-bad token is rejected, not treated as guest.
			log.Println("[ORDER] [ERROR] checkout token rejected:", err)
			c.JSON(http.StatusUnauthorized, gin.H{"code": checkout.CodeVerificationNeeded, "message": "unauthorized"})
			return
		}

		if req.CustomerInfo != nil {
			input.Guest = &checkout.GuestInfo{
				Name:       req.CustomerInfo.Name,
				Phone:      req.CustomerInfo.Phone,
				Street:     req.CustomerInfo.Address.Street,
				City:       req.CustomerInfo.Address.City,
				County:     req.CustomerInfo.Address.County,
				PostalCode: req.CustomerInfo.Address.PostalCode,
				Notes:      req.CustomerInfo.Address.Notes,
			}
		}

		order, err := orders.PlaceOrder(c.Request.Context(), input)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}

// OrderStatus is the public read-only lookup by phone + order number.
func OrderStatus(orders *checkout.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/status"
		defer handlePanic(c, route)

		orderNumber := strings.TrimSpace(c.Query("order_number"))
		phoneQuery := strings.TrimSpace(c.Query("phone"))
		if orderNumber == "" || phoneQuery == "" {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_BODY", "message": "phone and order_number are required"})
			return
		}

		order, err := orders.Status(c.Request.Context(), orderNumber, phoneQuery)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}
