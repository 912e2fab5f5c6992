package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/checkout"
	"backend/internal/middleware"
)

type addressRequest struct {
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	County     string `json:"county" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Notes      string `json:"notes"`
	IsDefault  bool   `json:"is_default"`
}

func (r addressRequest) input() checkout.AddressInput {
	return checkout.AddressInput{
		Street:     r.Street,
		City:       r.City,
		County:     r.County,
		PostalCode: r.PostalCode,
		Notes:      r.Notes,
		IsDefault:  r.IsDefault,
	}
}

func ListAddresses(book *checkout.AddressBook) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /checkout/addresses"
		defer handlePanic(c, route)

		claims, ok := middleware.CheckoutClaimsFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"code": checkout.CodeVerificationNeeded, "message": "unauthorized"})
			return
		}
		customerID, err := claims.ObjectID()
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": checkout.CodeVerificationNeeded, "message": "unauthorized"})
			return
		}

		addresses, err := book.List(c.Request.Context(), customerID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"addresses": addresses})
	}
}

func CreateAddress(book *checkout.AddressBook) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/addresses"
		defer handlePanic(c, route)

		claims, ok := middleware.CheckoutClaimsFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"code": checkout.CodeVerificationNeeded, "message": "unauthorized"})
			return
		}
		customerID, err := claims.ObjectID()
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": checkout.CodeVerificationNeeded, "message": "unauthorized"})
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		address, serr := book.Add(c.Request.Context(), customerID, req.input())
		if serr != nil {
			respondServiceError(c, route, serr)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"address": address})
	}
}

func UpdateAddress(book *checkout.AddressBook) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /checkout/addresses"
		defer handlePanic(c, route)

		claims, ok := middleware.CheckoutClaimsFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"code": checkout.CodeVerificationNeeded, "message": "unauthorized"})
			return
		}
		customerID, err := claims.ObjectID()
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": checkout.CodeVerificationNeeded, "message": "unauthorized"})
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		address, serr := book.Update(c.Request.Context(), customerID, c.Param("id"), req.input())
		if serr != nil {
			respondServiceError(c, route, serr)
			return
		}
		c.JSON(http.StatusOK, gin.H{"address": address})
	}
}

func DeleteAddress(book *checkout.AddressBook) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /checkout/addresses"
		defer handlePanic(c, route)

		claims, ok := middleware.CheckoutClaimsFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"code": checkout.CodeVerificationNeeded, "message": "unauthorized"})
			return
		}
		customerID, err := claims.ObjectID()
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": checkout.CodeVerificationNeeded, "message": "unauthorized"})
			return
		}

		if err := book.Delete(c.Request.Context(), customerID, c.Param("id")); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "address deleted"})
	}
}
