package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// GetProducts lists active, non-deleted products for the public catalog.
func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, bson.M{
			"isActive":  true,
			"isDeleted": bson.M{"$ne": true},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "products could not be fetched")
			return
		}
		defer cursor.Close(ctx)

		var products []models.Product
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to parse products")
			return
		}
		for i := range products {
			products[i].InStock = products[i].Stock > 0
		}

		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}
