package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/checkout"
)

type addToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	SessionID string `json:"session_id"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// AddToCart puts a product into the session cart, minting a session when the
// client has none yet.
func AddToCart(carts *checkout.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart"
		defer handlePanic(c, route)

		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_BODY", "message": "invalid product_id"})
			return
		}

		cart, serr := carts.Add(c.Request.Context(), strings.TrimSpace(req.SessionID), productID, req.Quantity)
		if serr != nil {
			respondServiceError(c, route, serr)
			return
		}

		c.JSON(http.StatusOK, gin.H{"session_id": cart.SessionID, "cart": cart})
	}
}

func GetCart(carts *checkout.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		cart, err := carts.Get(c.Request.Context(), c.Param("session_id"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// UpdateCartItem sets a line's quantity; zero removes the line.
func UpdateCartItem(carts *checkout.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/item"
		defer handlePanic(c, route)

		var req updateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_BODY", "message": "quantity is required"})
			return
		}

		productID, err := primitive.ObjectIDFromHex(c.Param("product_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_BODY", "message": "invalid product id"})
			return
		}

		cart, serr := carts.Update(c.Request.Context(), c.Param("session_id"), productID, *req.Quantity)
		if serr != nil {
			respondServiceError(c, route, serr)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func ClearCart(carts *checkout.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart"
		defer handlePanic(c, route)

		if err := carts.Delete(c.Request.Context(), c.Param("session_id")); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
	}
}
