package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/trendora/storefront-api/internal/cache"
	"github.com/trendora/storefront-api/internal/config"
	"github.com/trendora/storefront-api/internal/events"
	"github.com/trendora/storefront-api/internal/handlers"
	"github.com/trendora/storefront-api/internal/mailer"
	"github.com/trendora/storefront-api/internal/middleware"
	"github.com/trendora/storefront-api/internal/migration"
	"github.com/trendora/storefront-api/internal/repository"
	"github.com/trendora/storefront-api/internal/services"
	"github.com/trendora/storefront-api/internal/templates"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.LoadConfig()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Server.Mode == "release" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	db, err := initDatabase(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	if err := migration.Run(db); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}
	logger.Info("Database migrations applied")

	redisClient := initRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var publisher *events.Publisher
	if cfg.NATS.Enabled {
		publisher, err = events.NewPublisher(cfg.NATS.URL, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to connect to NATS, continuing without event publishing")
		} else {
			logger.Info("Events publisher connected")
			defer publisher.Close()
		}
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load email templates")
	}

	var emailProvider mailer.Provider
	if cfg.Email.Provider == "sendgrid" && cfg.Email.SendGridAPIKey != "" {
		emailProvider = mailer.NewSendGridProvider(cfg.Email.SendGridAPIKey, cfg.Email.From, cfg.Email.FromName)
	} else {
		emailProvider = mailer.NewSMTPProvider(mailer.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			From:     cfg.Email.From,
			FromName: cfg.Email.FromName,
		})
	}
	dispatcher := mailer.NewDispatcher(emailProvider, logger)
	defer dispatcher.Close()
	logger.WithField("provider", emailProvider.GetName()).Info("Mail dispatcher started")

	catalogCache := cache.NewCatalogCache(redisClient, logger)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	contactRepo := repository.NewContactRepository(db)
	newsletterRepo := repository.NewNewsletterRepository(db)

	// Services
	passwordService := services.NewPasswordService()
	jwtService := services.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryDays)
	notificationService := services.NewNotificationService(dispatcher, renderer, logger, cfg.App.FrontendURL, cfg.Email.AdminEmail)
	cartService := services.NewCartService(cartRepo, productRepo, logger)
	authService := services.NewAuthService(userRepo, cartService, passwordService, jwtService, notificationService, publisher, logger)
	catalogService := services.NewCatalogService(productRepo, categoryRepo, catalogCache, logger)
	categoryService := services.NewCategoryService(categoryRepo, catalogCache)
	reviewService := services.NewReviewService(reviewRepo, productRepo, logger)
	orderService := services.NewOrderService(orderRepo, productRepo, cartRepo, notificationService, publisher, logger)
	newsletterService := services.NewNewsletterService(newsletterRepo, notificationService, logger)
	contactService := services.NewContactService(contactRepo, notificationService, logger)

	// Handlers
	secureCookies := cfg.App.SecureCookies
	authHandler := handlers.NewAuthHandler(authService, logger, secureCookies)
	productHandler := handlers.NewProductHandler(catalogService, logger, cfg.App.UploadDir)
	categoryHandler := handlers.NewCategoryHandler(categoryService, logger)
	cartHandler := handlers.NewCartHandler(cartService, logger, secureCookies)
	orderHandler := handlers.NewOrderHandler(orderService, logger)
	reviewHandler := handlers.NewReviewHandler(reviewService, logger)
	newsletterHandler := handlers.NewNewsletterHandler(newsletterService, logger)
	contactHandler := handlers.NewContactHandler(contactService, logger)
	healthHandler := handlers.NewHealthHandler(db)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.SetupCORS(cfg.App.FrontendURL))
	router.Use(middleware.Metrics())

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/uploads", cfg.App.UploadDir)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/verify-email/:token", authHandler.VerifyEmail)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password/:token", authHandler.ResetPassword)

			auth.GET("/me", authMiddleware.AuthRequired(), authHandler.Me)
			auth.PUT("/profile", authMiddleware.AuthRequired(), authHandler.UpdateProfile)
			auth.PUT("/change-password", authMiddleware.AuthRequired(), authHandler.ChangePassword)
		}

		products := api.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/featured", productHandler.Featured)
			products.GET("/new-arrivals", productHandler.NewArrivals)
			products.GET("/best-sellers", productHandler.BestSellers)
			products.GET("/category/:categoryId", productHandler.ByCategory)
			products.GET("/search/:keyword", productHandler.Search)
			products.GET("/:id", productHandler.Get)

			products.POST("", authMiddleware.AuthRequired(), authMiddleware.AdminRequired(), productHandler.Create)
			products.PUT("/:id", authMiddleware.AuthRequired(), authMiddleware.AdminRequired(), productHandler.Update)
			products.DELETE("/:id", authMiddleware.AuthRequired(), authMiddleware.AdminRequired(), productHandler.Delete)
			products.POST("/:id/upload", authMiddleware.AuthRequired(), authMiddleware.AdminRequired(), productHandler.Upload)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.GET("/featured", categoryHandler.Featured)
			categories.GET("/:id", categoryHandler.Get)

			categories.POST("", authMiddleware.AuthRequired(), authMiddleware.AdminRequired(), categoryHandler.Create)
			categories.PUT("/:id", authMiddleware.AuthRequired(), authMiddleware.AdminRequired(), categoryHandler.Update)
			categories.DELETE("/:id", authMiddleware.AuthRequired(), authMiddleware.AdminRequired(), categoryHandler.Delete)
		}

		cart := api.Group("/cart")
		cart.Use(authMiddleware.OptionalAuth())
		{
			cart.GET("", cartHandler.Get)
			cart.POST("/add", cartHandler.AddItem)
			cart.PUT("/update/:itemId", cartHandler.UpdateItem)
			cart.DELETE("/remove/:itemId", cartHandler.RemoveItem)
			cart.DELETE("/clear", cartHandler.Clear)
			cart.POST("/merge", authMiddleware.AuthRequired(), cartHandler.Merge)
		}

		orders := api.Group("/orders")
		orders.Use(authMiddleware.AuthRequired())
		{
			orders.POST("", orderHandler.Create)
			orders.GET("/my-orders", orderHandler.ListMine)
			orders.GET("/:id", orderHandler.Get)
			orders.PUT("/:id/pay", orderHandler.Pay)
			orders.PUT("/:id/cancel", orderHandler.Cancel)

			orders.GET("", authMiddleware.AdminRequired(), orderHandler.List)
			orders.PUT("/:id/deliver", authMiddleware.AdminRequired(), orderHandler.Deliver)
			orders.PUT("/:id/status", authMiddleware.AdminRequired(), orderHandler.UpdateStatus)
		}

		reviews := api.Group("/reviews")
		{
			reviews.GET("/product/:productId", reviewHandler.ListByProduct)
			reviews.POST("/product/:productId", authMiddleware.AuthRequired(), reviewHandler.Create)
			reviews.PUT("/:id", authMiddleware.AuthRequired(), reviewHandler.Update)
			reviews.DELETE("/:id", authMiddleware.AuthRequired(), reviewHandler.Delete)
			reviews.GET("", authMiddleware.AuthRequired(), authMiddleware.AdminRequired(), reviewHandler.List)
		}

		newsletter := api.Group("/newsletter")
		{
			newsletter.POST("/subscribe", newsletterHandler.Subscribe)
			newsletter.POST("/unsubscribe", newsletterHandler.Unsubscribe)
			newsletter.GET("/subscribers", authMiddleware.AuthRequired(), authMiddleware.AdminRequired(), newsletterHandler.ListSubscribers)
			newsletter.POST("/send", authMiddleware.AuthRequired(), authMiddleware.AdminRequired(), newsletterHandler.Send)
		}

		contact := api.Group("/contact")
		{
			contact.POST("", contactHandler.Submit)
			contact.GET("", authMiddleware.AuthRequired(), authMiddleware.AdminRequired(), contactHandler.List)
			contact.GET("/:id", authMiddleware.AuthRequired(), authMiddleware.AdminRequired(), contactHandler.Get)
			contact.PUT("/:id/respond", authMiddleware.AuthRequired(), authMiddleware.AdminRequired(), contactHandler.Respond)
			contact.DELETE("/:id", authMiddleware.AuthRequired(), authMiddleware.AdminRequired(), contactHandler.Delete)
		}
	}

	// Front-end assets live next to the API, like the upload dir. Unmatched
	// GETs fall through to the file server so the storefront can be hosted
	// from the same process.
	if cfg.App.StaticDir != "" {
		static := http.FileServer(http.Dir(cfg.App.StaticDir))
		router.NoRoute(func(c *gin.Context) {
			if c.Request.Method == http.MethodGet {
				static.ServeHTTP(c.Writer, c.Request)
				return
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		})
	}

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("addr", srv.Addr).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	logger.Info("Server stopped")
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func initRedis(cfg *config.Config, logger *logrus.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		logger.Info("Redis disabled, catalog cache off")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unreachable, catalog cache off")
		client.Close()
		return nil
	}
	logger.Info("Redis connected")
	return client
}
