package main

import (
	"log"
	"net/http"
	"time"

	"github.com/bellapacxx/bingo-operator/config"
	"github.com/bellapacxx/bingo-operator/controllers"
	"github.com/bellapacxx/bingo-operator/routes"
	"github.com/bellapacxx/bingo-operator/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// setupRouter initializes Gin routes and middleware
func setupRouter(hub *services.EventHub) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup REST routes
	routes.SetupRoutes(r)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket game-event feed
	r.GET("/ws/events", hub.HandleWebSocket)

	return r
}

func main() {
	// Load env variables
	config.LoadEnv()

	// Connect to database
	db := config.SetupDatabase()

	// Load the immutable card catalog
	catalog, err := services.LoadCatalog(config.Getenv("CARDS_FILE", "cards.json"))
	if err != nil {
		log.Fatalf("[FATAL] Failed to load card catalog: %v", err)
	}

	// Wire the game engine
	hub := services.NewEventHub()
	controllers.Engine = services.NewSettlement(db, catalog, hub)

	router := setupRouter(hub)

	// Start server
	port := config.Getenv("PORT", "4000")
	log.Printf("🚀 Bingo Operator server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("[FATAL] Failed to start server: %v", err)
	}
}
