package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"backend/internal/checkout"
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/middleware"
	"backend/internal/mongostore"
	"backend/internal/sms"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(cfg.DBName)
	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureVerificationIndexes(db); err != nil {
		log.Printf("verification index warning: %v", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("cart index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureCustomerIndexes(db); err != nil {
		log.Printf("customer index warning: %v", err)
	}
	if err := database.EnsureAddressIndexes(db); err != nil {
		log.Printf("address index warning: %v", err)
	}
	if err := database.EnsureAdminIndexes(db); err != nil {
		log.Printf("admin index warning: %v", err)
	}

	var gateway sms.Gateway = sms.MockGateway{}
	if cfg.SMSEnabled {
		gateway = sms.NewHTTPGateway(cfg.SMSAPIURL, cfg.SMSAPIKey, cfg.SMSSender, cfg.SMSTimeout)
	} else {
		log.Println("[SMS] provider disabled, using mock gateway")
	}

	limiter := checkout.NewLimiter(mongostore.NewRateLimitStore(db))
	tokens := checkout.NewTokenIssuer(cfg.JWTSecret, cfg.CheckoutTokenTTL)

	verificationStore := mongostore.NewVerificationStore(db)
	cartStore := mongostore.NewCartStore(db)
	inventoryStore := mongostore.NewInventoryStore(db)

	verifications := checkout.NewVerificationService(
		verificationStore,
		mongostore.NewCustomerStore(db),
		limiter,
		gateway,
		tokens,
		cfg.CodeTTL, cfg.ResendGrace, cfg.SMSTimeout,
	)
	carts := checkout.NewCartService(cartStore, inventoryStore, cfg.CartTTL)
	addressBook := checkout.NewAddressBook(mongostore.NewAddressStore(db))
	orders := checkout.NewOrderService(
		verificationStore,
		cartStore,
		inventoryStore,
		mongostore.NewOrderStore(db),
		mongostore.NewSequenceStore(db),
		addressBook,
		mongostore.NewTxn(client),
		cfg.DeliveryFeeMinor, cfg.FreeDeliveryMinor,
		cfg.CheckoutTokenTTL,
	)

	r := gin.Default()
	api := r.Group("/api")

	api.GET("/products", handlers.GetProducts(db))

	api.POST("/cart/", handlers.AddToCart(carts))
	api.GET("/cart/:session_id", handlers.GetCart(carts))
	api.PUT("/cart/:session_id/item/:product_id", handlers.UpdateCartItem(carts))
	api.DELETE("/cart/:session_id", handlers.ClearCart(carts))

	api.POST("/checkout/phone/send-code", handlers.SendCode(verifications))
	api.POST("/checkout/phone/verify-code", handlers.VerifyCode(verifications))

	addresses := api.Group("/checkout/addresses")
	addresses.Use(middleware.CheckoutAuth(tokens))
	{
		addresses.GET("", handlers.ListAddresses(addressBook))
		addresses.POST("", handlers.CreateAddress(addressBook))
		addresses.PUT("/:id", handlers.UpdateAddress(addressBook))
		addresses.DELETE("/:id", handlers.DeleteAddress(addressBook))
	}

	api.POST("/orders", handlers.CreateOrder(orders, tokens))
	api.GET("/orders/status", handlers.OrderStatus(orders))

	api.POST("/admin/login", handlers.AdminLogin(db, cfg.JWTSecret, cfg.AdminTokenTTL))
	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret))
	{
		admin.GET("/products", handlers.GetAllProducts(db))
		admin.PUT("/products/:id/stock", handlers.UpdateProductStock(db))
		admin.GET("/orders", handlers.GetAdminOrders(db))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db))
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
