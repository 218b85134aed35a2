package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/parknow-app/parknow-api/internal/audit"
	"github.com/parknow-app/parknow-api/internal/config"
	"github.com/parknow-app/parknow-api/internal/handlers"
	infraRepo "github.com/parknow-app/parknow-api/internal/infra/repository"
	"github.com/parknow-app/parknow-api/internal/middleware"
	"github.com/parknow-app/parknow-api/internal/models"
	"github.com/parknow-app/parknow-api/internal/payments"
	"github.com/parknow-app/parknow-api/internal/storage"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	spaceRepo := infraRepo.NewParkingSpaceGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	uploader := storage.NewS3Uploader(cfg)

	checkout, err := payments.NewCheckout(cfg.MPAccessToken)
	if err != nil {
		log.Fatalf("failed to init payments: %v", err)
	}

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	spaceHandler := handlers.NewParkingSpaceHandler(db, spaceRepo, auditDispatcher, uploader)
	bookingHandler := handlers.NewBookingHandler(db, auditDispatcher, checkout)
	contactHandler := handlers.NewContactHandler(db)
	adminHandler := handlers.NewAdminHandler(db, auditDispatcher)

	authRequired := middleware.AuthMiddleware(cfg)
	ownerOrAdmin := middleware.RequireRole(models.RoleOwner, models.RoleAdmin)
	spaceOwnership := middleware.RequireSpaceOwnership(db)

	// ======================================================
	// SERVICE ENDPOINTS
	// ======================================================
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "ParkNow API",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "status": "healthy"})
		})

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/me", authRequired, authHandler.Me)

		// ------------------------------
		// CONTACT
		// ------------------------------
		api.POST("/contact", contactHandler.Create)

		// ------------------------------
		// PARKING SPACES
		// ------------------------------
		spaces := api.Group("/parking-spaces")
		{
			spaces.GET("", spaceHandler.List)

			// the literal owner route must be registered before /:id so the
			// "owner" segment is never captured as an id
			spaces.GET("/owner/my-spaces", authRequired, ownerOrAdmin, spaceHandler.MySpaces)

			spaces.GET("/:id", spaceHandler.GetByID)

			spaces.POST("", authRequired, ownerOrAdmin, spaceHandler.Create)
			spaces.PUT("/:id", authRequired, spaceOwnership, spaceHandler.Update)
			spaces.DELETE("/:id", authRequired, spaceOwnership, spaceHandler.Delete)
			spaces.POST("/:id/photos", authRequired, spaceOwnership, spaceHandler.UploadPhoto)
		}

		// ------------------------------
		// BOOKINGS
		// ------------------------------
		bookings := api.Group("/bookings")
		bookings.Use(authRequired)
		{
			bookings.POST("", bookingHandler.Create)
			bookings.GET("", bookingHandler.ListMine)
			bookings.GET("/:id", bookingHandler.GetByID)
			bookings.PATCH("/:id/cancel", bookingHandler.Cancel)
			bookings.POST("/:id/pay", bookingHandler.Pay)
			bookings.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), bookingHandler.Delete)
		}

		// ------------------------------
		// ADMIN
		// ------------------------------
		admin := api.Group("/admin")
		admin.Use(authRequired, middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PATCH("/parking-spaces/:id/status", adminHandler.ModerateSpace)
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
		}
	}
}
