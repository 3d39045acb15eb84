package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bellapacxx/bingo-operator/config"
	"github.com/bellapacxx/bingo-operator/models"
	"github.com/bellapacxx/bingo-operator/services"
	"github.com/bellapacxx/bingo-operator/utils/logger"
)

// Engine is the settlement engine shared by the game handlers, set in main.
var Engine *services.Settlement

// statusForError maps engine sentinel errors to HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrSuspended):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInsufficientFunds),
		errors.Is(err, services.ErrAlreadyTerminal),
		errors.Is(err, services.ErrUnknownPattern):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "Server error. Please try again later."})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// StartGame draws a call sequence, settles the house profit and creates the
// game for the admin in the path.
func StartGame(c *gin.Context) {
	adminID, ok := uintParam(c, "adminId")
	if !ok {
		return
	}

	var req services.StartGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := Engine.StartGame(c.Request.Context(), adminID, &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	calls, err := result.Game.CalledTokens()
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := gin.H{
		"message":        "Game started successfully",
		"gameId":         result.Game.ID,
		"calledNumbers":  calls,
		"playingCards":   req.CardPaletteNumbers,
		"payoutToWinner": result.Game.PayoutToWinner,
		"callSpeed":      req.CallSpeed,
		"shuffled":       result.Game.Shuffled,
	}
	if result.Warning != "" {
		resp["warning"] = result.Warning
	}
	c.JSON(http.StatusCreated, resp)
}

// CheckWinner judges a win claim for one card against the stored game.
func CheckWinner(c *gin.Context) {
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}
	cardNumber, err := strconv.Atoi(c.Param("cardNumber"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cardNumber"})
		return
	}

	var req struct {
		CalledNumbers  []string `json:"calledNumbers"`
		WinningPattern string   `json:"winningPattern" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := Engine.VerifyClaim(c.Request.Context(), gameID, cardNumber, req.CalledNumbers, req.WinningPattern)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// EndGame completes an ongoing game and reconciles the admin ledger.
func EndGame(c *gin.Context) {
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}
	if err := Engine.EndGame(c.Request.Context(), gameID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game ended successfully."})
}

// CancelGame voids an ongoing game and refunds the profit debit.
func CancelGame(c *gin.Context) {
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}
	if err := Engine.CancelGame(c.Request.Context(), gameID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game canceled successfully."})
}

// RecordWinner stores the winner annotations on a game.
func RecordWinner(c *gin.Context) {
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}

	var req struct {
		WinningCardNumbers []int `json:"winningCardNumbers"`
		TotalCallsToWin    int   `json:"totalCallsToWin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := Engine.RecordWinner(c.Request.Context(), gameID, req.WinningCardNumbers, req.TotalCallsToWin); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Winner information recorded successfully."})
}

// ListGames returns all games, newest first
func ListGames(c *gin.Context) {
	var games []models.Game
	if err := config.DB.Order("created_at DESC").Find(&games).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list games"})
		return
	}
	c.JSON(http.StatusOK, games)
}

// GetGame returns single game info
func GetGame(c *gin.Context) {
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}

	var game models.Game
	if err := config.DB.First(&game, gameID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}
	c.JSON(http.StatusOK, game)
}
