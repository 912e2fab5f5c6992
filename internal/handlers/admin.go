package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/models"
)

type adminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin issues a back-office JWT (role=admin).
func AdminLogin(db *mongo.Database, jwtSecret string, tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/login"
		defer handlePanic(c, route)

		var req adminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var admin models.Admin
		err := db.Collection("admins").FindOne(ctx, bson.M{
			"email": strings.ToLower(strings.TrimSpace(req.Email)),
		}).Decode(&admin)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		now := time.Now()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"adminId": admin.ID.Hex(),
			"role":    "admin",
			"iat":     now.Unix(),
			"exp":     now.Add(tokenTTL).Unix(),
		})
		signed, err := token.SignedString([]byte(jwtSecret))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "could not sign token")
			return
		}

		log.Println("[ADMIN] [INFO] admin logged in:", admin.Email)
		c.JSON(http.StatusOK, gin.H{
			"token":     signed,
			"expiresIn": int64(tokenTTL / time.Second),
		})
	}
}

// GetAllProducts lists every product, including inactive and deleted ones.
func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/products"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, bson.M{})
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

		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

type updateStockRequest struct {
	Stock      *int   `json:"stock"`
	PriceMinor *int64 `json:"priceMinor"`
	IsActive   *bool  `json:"isActive"`
}

// UpdateProductStock adjusts stock, price or availability of one product.
func UpdateProductStock(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/products/stock"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
			return
		}

		var req updateStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		set := bson.M{}
		if req.Stock != nil {
			if *req.Stock < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "stock must not be negative"})
				return
			}
			set["stock"] = *req.Stock
		}
		if req.PriceMinor != nil {
			if *req.PriceMinor <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "priceMinor must be positive"})
				return
			}
			set["priceMinor"] = *req.PriceMinor
		}
		if req.IsActive != nil {
			set["isActive"] = *req.IsActive
		}
		if len(set) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").UpdateOne(ctx,
			bson.M{"_id": productID, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": set},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}

		log.Println("[ADMIN] [INFO] product updated:", productID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "product updated"})
	}
}

// GetAdminOrders lists orders, newest first.
func GetAdminOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/orders"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "orders could not be fetched")
			return
		}
		defer cursor.Close(ctx)

		var orders []models.Order
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to parse orders")
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// UpdateOrderStatus applies one admin-driven status transition. The filter
// pins the current status, so two admins racing on the same order cannot
// both apply a transition from it.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/orders/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		if !models.CanTransition(order.Status, req.Status) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "transition not allowed",
				"from":  order.Status,
				"to":    req.Status,
			})
			return
		}

		change := models.StatusChange{
			Status:    req.Status,
			Note:      strings.TrimSpace(req.Note),
			ChangedAt: time.Now(),
		}
		res, err := db.Collection("orders").UpdateOne(ctx,
			bson.M{"_id": orderID, "status": order.Status},
			bson.M{
				"$set":  bson.M{"status": req.Status},
				"$push": bson.M{"statusHistory": change},
			},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "order status changed concurrently, reload"})
			return
		}

		log.Printf("[ADMIN] [INFO] order %s: %s -> %s", order.OrderNumber, order.Status, req.Status)
		c.JSON(http.StatusOK, gin.H{"message": "status updated"})
	}
}
