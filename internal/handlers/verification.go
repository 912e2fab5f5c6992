package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/checkout"
)

type sendCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
	Name  string `json:"name" binding:"required"`
}

type verifyCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// SendCode starts (or re-sends) a phone verification.
func SendCode(verifications *checkout.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/phone/send-code"
		defer handlePanic(c, route)

		var req sendCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		result, err := verifications.SendCode(c.Request.Context(), c.ClientIP(), req.Phone, req.Name)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// VerifyCode exchanges a correct code for a checkout session token.
func VerifyCode(verifications *checkout.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/phone/verify-code"
		defer handlePanic(c, route)

		var req verifyCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		result, err := verifications.VerifyCode(c.Request.Context(), req.Phone, req.Code)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
