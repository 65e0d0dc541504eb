// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/assetverse/assetverse-backend/internal/cache"
	"github.com/assetverse/assetverse-backend/internal/config"
	"github.com/assetverse/assetverse-backend/internal/handlers"
	"github.com/assetverse/assetverse-backend/internal/middleware"
	"github.com/assetverse/assetverse-backend/internal/services"
	"github.com/assetverse/assetverse-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *gin.Engine {
	// Initialize services
	assetCache := cache.NewAssetCache(redisClient)
	storageService, _ := services.NewStorageService(cfg)
	notificationService := services.NewNotificationService(db)

	assetService := services.NewAssetService(db, assetCache)
	creditService := services.NewCreditService(db)
	affiliationService := services.NewAffiliationService(db)
	requestService := services.NewRequestService(db, assetService, creditService, affiliationService, notificationService)
	assignmentService := services.NewAssignmentService(db, assetService, notificationService)
	paymentService := services.NewPaymentService(db, cfg,
		services.NewStripeGateway(cfg.Payment.StripeSecretKey), creditService, notificationService)
	employeeService := services.NewEmployeeService(db)
	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, notificationService, storageService)
	assetHandler := handlers.NewAssetHandler(assetService, storageService)
	requestHandler := handlers.NewRequestHandler(requestService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	affiliationHandler := handlers.NewAffiliationHandler(affiliationService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, creditService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS([]string{cfg.Frontend.BaseURL}))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/register-hr", authHandler.RegisterHR)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/role", userHandler.GetRoleByEmail)

			protected := users.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.GET("/search", middleware.HRRequired(), userHandler.SearchUsers)
				protected.PUT("/profile", userHandler.UpdateProfile)
				protected.POST("/avatar", userHandler.UploadAvatar)
			}
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", userHandler.GetNotifications)
			notifications.GET("/unread-count", userHandler.GetUnreadCount)
			notifications.PATCH("/:id/read", userHandler.MarkNotificationRead)
		}

		// Asset routes
		assets := v1.Group("/assets")
		{
			assets.GET("/available", middleware.OptionalAuth(), assetHandler.GetAvailableAssets)
			assets.GET("/:id", middleware.OptionalAuth(), assetHandler.GetAsset)

			protected := assets.Group("")
			protected.Use(middleware.AuthRequired(), middleware.HRRequired())
			{
				protected.GET("", assetHandler.GetAssets)
				protected.POST("", assetHandler.CreateAsset)
				protected.PUT("/:id", assetHandler.UpdateAsset)
				protected.DELETE("/:id", assetHandler.DeleteAsset)
				protected.POST("/upload", assetHandler.UploadImage)
			}
		}

		// Request lifecycle routes
		requests := v1.Group("/requests")
		requests.Use(middleware.AuthRequired())
		{
			requests.POST("", requestHandler.CreateRequest)
			requests.GET("/mine", requestHandler.GetMyRequests)
			requests.DELETE("/:id", requestHandler.DeleteRequest)

			hr := requests.Group("")
			hr.Use(middleware.HRRequired())
			{
				hr.GET("", requestHandler.GetRequests)
				hr.PATCH("/:id/decide", requestHandler.DecideRequest)
				hr.PATCH("/:id/assign", requestHandler.AssignRequest)
				hr.PATCH("/:id/status", requestHandler.SetRequestStatus)
			}
		}

		// Assignment routes
		assignments := v1.Group("/assignments")
		assignments.Use(middleware.AuthRequired())
		{
			assignments.GET("/mine", assignmentHandler.GetMyAssignments)
			assignments.PATCH("/:id/return", assignmentHandler.ReturnAssignment)
			assignments.GET("", middleware.HRRequired(), assignmentHandler.GetAssignments)
		}

		// Affiliation routes
		affiliations := v1.Group("/affiliations")
		affiliations.Use(middleware.AuthRequired())
		{
			affiliations.GET("/mine", affiliationHandler.GetMyAffiliations)
			affiliations.GET("/:hrId/teammates", affiliationHandler.GetTeammates)
		}

		team := v1.Group("/team")
		team.Use(middleware.AuthRequired(), middleware.HRRequired())
		{
			team.GET("", affiliationHandler.GetTeam)
			team.DELETE("/:id", affiliationHandler.RemoveTeamMember)
		}

		// Employee onboarding routes
		employees := v1.Group("/employees")
		{
			employees.POST("", employeeHandler.CreateEmployee)

			hr := employees.Group("")
			hr.Use(middleware.AuthRequired(), middleware.HRRequired())
			{
				hr.GET("", employeeHandler.GetEmployees)
				hr.GET("/:id", employeeHandler.GetEmployee)
				hr.PATCH("/:id/decide", employeeHandler.DecideEmployee)
				hr.DELETE("/:id", employeeHandler.DeleteEmployee)
			}
		}

		// Package and payment routes
		v1.GET("/packages", paymentHandler.GetPackages)

		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired(), middleware.HRRequired(), middleware.PaymentRateLimit())
		{
			payments.POST("/checkout", paymentHandler.CreateCheckout)
			payments.POST("/reconcile", paymentHandler.Reconcile)
			payments.GET("", paymentHandler.GetPayments)
			payments.GET("/credits", paymentHandler.GetCreditBalance)
		}
	}

	return r
}
