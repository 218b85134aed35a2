package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parknow-app/parknow-api/internal/config"
	dbpkg "github.com/parknow-app/parknow-api/internal/db"
	"github.com/parknow-app/parknow-api/internal/middleware"
	"github.com/parknow-app/parknow-api/internal/routes"
)

func main() {

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORSMiddleware())

	// any unhandled panic becomes the generic 500; detail leaks only in dev
	r.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		log.Printf("panic recovered: %v", err)
		body := gin.H{"success": false, "message": "Something went wrong!"}
		if cfg.IsDevelopment() {
			body["error"] = err
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	}))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "Route not found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg)

	log.Printf("Server running on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
