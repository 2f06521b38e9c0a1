package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
)

func main() {
	config.Load()

	db, err := database.Connect(config.AppEnv.MongoURI, config.AppEnv.DBName)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = database.Disconnect(ctx)
	}()

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Println("user index warning:", err)
	}
	if err := database.EnsureCouponIndexes(db); err != nil {
		log.Println("coupon index warning:", err)
	}
	if err := database.EnsureReviewIndexes(db); err != nil {
		log.Println("review index warning:", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Println("order index warning:", err)
	}

	genStore := cache.NewMemoryGenStore()
	if config.AppEnv.RedisAddr != "" {
		genStore = cache.NewRedisGenStore(config.AppEnv.RedisAddr)
		log.Println("[CACHE] using redis generation store at", config.AppEnv.RedisAddr)
	}
	inv := cache.NewInvalidator(genStore)
	pages := cache.NewResponseCache(genStore)

	secret := config.AppEnv.SessionSecret
	ttl := config.AppEnv.SessionTTL

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.AppEnv.SiteURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.POST("/auth/login", handlers.Login(db, secret, ttl))
		api.GET("/auth/me", handlers.Me(db, secret))
		api.POST("/auth/logout", handlers.Logout())

		api.GET("/products", pages.Middleware(cache.TagProducts), handlers.GetProducts(db))
		api.GET("/products/:id", pages.Middleware(cache.TagProducts), handlers.GetProduct(db))
		api.POST("/products", handlers.CreateProduct(db, inv, secret))
		api.PUT("/products/:id", handlers.UpdateProduct(db, inv, secret))
		api.DELETE("/products/:id", handlers.DeleteProduct(db, inv, secret))

		api.GET("/colors", pages.Middleware(cache.TagProducts), handlers.GetColors(db))
		api.GET("/badges", pages.Middleware(cache.TagProducts), handlers.GetBadges(db))

		api.GET("/categories", pages.Middleware(cache.TagCategories), handlers.GetCategories(db))
		api.GET("/categories/:id", pages.Middleware(cache.TagCategories), handlers.GetCategory(db))
		api.POST("/categories", handlers.CreateCategory(db, inv, secret))
		api.PUT("/categories/:id", handlers.UpdateCategory(db, inv, secret))
		api.DELETE("/categories/:id", handlers.DeleteCategory(db, inv, secret))

		api.POST("/orders", handlers.CreateOrder(db, inv, secret))
		api.GET("/orders", handlers.GetOrders(db, secret))
		api.GET("/orders/:id", handlers.GetOrder(db, secret))
		api.PUT("/orders/:id", handlers.UpdateOrderStatus(db, inv, secret))
		api.PATCH("/orders/:id", handlers.UpdateOrderStatus(db, inv, secret))
		api.DELETE("/orders/:id", handlers.DeleteOrder(db, inv, secret))

		api.GET("/reviews", pages.Middleware(cache.TagReviews), handlers.GetReviews(db))
		api.POST("/reviews", handlers.CreateReview(db, inv, secret))
		api.PUT("/reviews/:id", handlers.UpdateReview(db, inv, secret))
		api.DELETE("/reviews/:id", handlers.DeleteReview(db, inv, secret))

		api.GET("/review-gallery", pages.Middleware(cache.TagReviewGallery), handlers.GetReviewGallery(db))
		api.POST("/review-gallery", handlers.CreateGalleryImage(db, inv, secret))
		api.PUT("/review-gallery/:id", handlers.UpdateGalleryImage(db, inv, secret))
		api.DELETE("/review-gallery/:id", handlers.DeleteGalleryImage(db, inv, secret))

		api.POST("/users", handlers.CreateUser(db, inv))
		api.GET("/users", handlers.GetUsers(db, secret))
		api.GET("/users/:id", handlers.GetUser(db, secret))
		api.PUT("/users/:id", handlers.UpdateUser(db, inv, secret))
		api.DELETE("/users/:id", handlers.DeleteUser(db, inv, secret))

		api.GET("/coupons", handlers.GetCoupons(db, secret))
		api.POST("/coupons", handlers.CreateCoupon(db, inv, secret))
		api.PUT("/coupons/:id", handlers.UpdateCoupon(db, inv, secret))
		api.DELETE("/coupons/:id", handlers.DeleteCoupon(db, inv, secret))
		api.POST("/coupons/validate", handlers.ValidateCoupon(db))

		api.GET("/settings", pages.Middleware(cache.TagSettings), handlers.GetSettings(db))
		api.PUT("/settings", handlers.UpdateSettings(db, inv, secret))

		api.GET("/hero-slides", pages.Middleware(cache.TagHeroSlides), handlers.GetHeroSlides(db, secret))
		api.POST("/hero-slides", handlers.CreateHeroSlide(db, inv, secret))
		api.PUT("/hero-slides/:id", handlers.UpdateHeroSlide(db, inv, secret))
		api.DELETE("/hero-slides/:id", handlers.DeleteHeroSlide(db, inv, secret))
	}

	log.Println("listening on :" + config.AppEnv.Port)
	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		log.Fatal(err)
	}
}
