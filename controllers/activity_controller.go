package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whoplift/whoplift/models"
	"github.com/whoplift/whoplift/utils"
)

// ActivityController serves the reverse-chronological activity feed.
type ActivityController struct {
	db *gorm.DB
}

// NewActivityController creates an ActivityController.
func NewActivityController(db *gorm.DB) *ActivityController {
	return &ActivityController{db: db}
}

// Feed returns the caller's newest activity entries.
func (a *ActivityController) Feed(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	limit := parsePositiveQuery(ctx, "limit", 20, 100)

	var entries []models.ActivityLog
	if err := a.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load activity")
		return
	}

	utils.Success(ctx, gin.H{"activity": entries})
}
