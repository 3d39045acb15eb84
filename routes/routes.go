package routes

import (
	"github.com/bellapacxx/bingo-operator/controllers"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// ----------------------
	// Admin routes
	// ----------------------
	api.POST("/admins", controllers.CreateAdmin)                    // Register operator
	api.GET("/admins/:adminId", controllers.GetAdmin)               // Operator ledger view
	api.POST("/admins/:adminId/games/start", controllers.StartGame) // Start bingo game

	// ----------------------
	// Game routes
	// ----------------------
	api.GET("/games", controllers.ListGames) // List all games
	api.GET("/games/:gameId", controllers.GetGame)
	api.POST("/games/:gameId/end", controllers.EndGame)
	api.POST("/games/:gameId/cancel", controllers.CancelGame)
	api.POST("/games/:gameId/recordWinner", controllers.RecordWinner)
	api.POST("/games/:gameId/winner/:cardNumber", controllers.CheckWinner) // Judge a claim
}
