package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bellapacxx/bingo-operator/config"
	"github.com/bellapacxx/bingo-operator/models"
)

// CreateAdmin registers a new operator account
func CreateAdmin(c *gin.Context) {
	var req struct {
		Username string           `json:"username" binding:"required"`
		Role     models.AdminRole `json:"role"`
		Wallet   float64          `json:"wallet"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin := models.Admin{
		Username: req.Username,
		Role:     req.Role,
		Wallet:   req.Wallet,
	}
	if admin.Role == "" {
		admin.Role = models.RoleAdmin
	}
	if err := config.DB.Create(&admin).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin"})
		return
	}
	c.JSON(http.StatusCreated, admin)
}

// GetAdmin returns one operator's ledger view, with the period ring decoded
func GetAdmin(c *gin.Context) {
	adminID, ok := uintParam(c, "adminId")
	if !ok {
		return
	}

	var admin models.Admin
	if err := config.DB.First(&admin, adminID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		return
	}

	stats, err := admin.PeriodStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"admin":         admin,
		"statsByPeriod": stats,
	})
}
