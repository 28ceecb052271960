package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whoplift/whoplift/models"
	"github.com/whoplift/whoplift/utils"
)

// AchievementController serves the achievement catalog with unlock state.
type AchievementController struct {
	db *gorm.DB
}

// NewAchievementController creates an AchievementController.
func NewAchievementController(db *gorm.DB) *AchievementController {
	return &AchievementController{db: db}
}

// List returns the full catalog with the caller's per-achievement state.
func (a *AchievementController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var achievements []models.Achievement
	if err := a.db.Order("id ASC").Find(&achievements).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load achievements")
		return
	}

	var unlocks []models.UserAchievement
	if err := a.db.Where("user_id = ?", userID).Find(&unlocks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to load unlocks")
		return
	}
	unlocked := make(map[uint]time.Time, len(unlocks))
	for _, u := range unlocks {
		unlocked[u.AchievementID] = u.UnlockedAt
	}

	items := make([]gin.H, 0, len(achievements))
	for _, ach := range achievements {
		item := gin.H{
			"id":          ach.ID,
			"code":        ach.Code,
			"name":        ach.Name,
			"description": ach.Description,
			"category":    ach.Category,
			"xp_reward":   ach.XPReward,
			"icon":        ach.Icon,
		}
		if at, ok := unlocked[ach.ID]; ok {
			item["unlocked"] = true
			item["unlocked_at"] = at
		} else {
			item["unlocked"] = false
		}
		items = append(items, item)
	}

	utils.Success(ctx, gin.H{"achievements": items})
}
