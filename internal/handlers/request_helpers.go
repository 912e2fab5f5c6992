package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"backend/internal/checkout"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL",
			"message": "internal server error",
		})
	}
}

// respondBindError turns a gin binding failure into the API error shape,
// listing the offending fields when the validator produced them.
func respondBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_BODY",
			"message": "validation failed",
			"details": details,
		})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"code":    "INVALID_BODY",
		"message": "invalid request body",
	})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"code": "INTERNAL", "message": message})
}

// respondServiceError maps a checkout service failure to the API error
// shape. Anything that is not a typed checkout error is a 500; internals
// never cross the boundary.
func respondServiceError(c *gin.Context, route string, err error) {
	if apiErr, ok := checkout.AsError(err); ok {
		body := gin.H{"code": apiErr.Code, "message": apiErr.Message}
		if apiErr.RetryAfter > 0 {
			body["retry_after"] = int(apiErr.RetryAfter / time.Second)
		}
		for k, v := range apiErr.Details {
			body[k] = v
		}
		c.AbortWithStatusJSON(apiErr.Status, body)
		return
	}
	log.Printf("[%s] internal error: %v", route, err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"code":    "INTERNAL",
		"message": "internal server error",
	})
}
