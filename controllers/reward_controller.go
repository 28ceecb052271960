package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whoplift/whoplift/models"
	"github.com/whoplift/whoplift/utils"
)

// RewardController handles the points shop.
type RewardController struct {
	db *gorm.DB
}

var (
	errRewardNotFound     = errors.New("reward not found")
	errInsufficientPoints = errors.New("insufficient points")
)

// NewRewardController creates a RewardController.
func NewRewardController(db *gorm.DB) *RewardController {
	return &RewardController{db: db}
}

// List returns the active reward catalog with per-user redemption state.
func (r *RewardController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var rewards []models.Reward
	if err := r.db.Where("active = ?", true).Order("cost ASC").Find(&rewards).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load rewards")
		return
	}

	var redemptions []models.UserReward
	if err := r.db.Where("user_id = ?", userID).Find(&redemptions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load redemptions")
		return
	}
	redeemed := make(map[uint]time.Time, len(redemptions))
	for _, rd := range redemptions {
		redeemed[rd.RewardID] = rd.RedeemedAt
	}

	items := make([]gin.H, 0, len(rewards))
	for _, rw := range rewards {
		item := gin.H{
			"id":          rw.ID,
			"name":        rw.Name,
			"description": rw.Description,
			"cost":        rw.Cost,
		}
		if at, ok := redeemed[rw.ID]; ok {
			item["redeemed"] = true
			item["redeemed_at"] = at
		} else {
			item["redeemed"] = false
		}
		items = append(items, item)
	}

	utils.Success(ctx, gin.H{"rewards": items})
}

// Redeem spends points on a reward. Redemption is permanent; points never
// go negative — a short balance rejects the purchase untouched.
func (r *RewardController) Redeem(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		RewardID uint `json:"rewardId" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	var remaining int

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		var reward models.Reward
		if err := tx.Where("id = ? AND active = ?", req.RewardID, true).First(&reward).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errRewardNotFound
			}
			return err
		}

		// The balance check rides in the WHERE so a stale in-memory balance
		// can never overspend; zero affected rows means short funds.
		res := tx.Model(&models.User{}).
			Where("id = ? AND total_points >= ?", user.ID, reward.Cost).
			Update("total_points", gorm.Expr("total_points - ?", reward.Cost))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errInsufficientPoints
		}

		if err := tx.First(&user, user.ID).Error; err != nil {
			return err
		}
		remaining = user.TotalPoints

		return tx.Create(&models.UserReward{
			UserID:     user.ID,
			RewardID:   reward.ID,
			RedeemedAt: time.Now(),
		}).Error
	})

	if err != nil {
		switch {
		case errors.Is(err, errRewardNotFound):
			utils.Error(ctx, http.StatusNotFound, 40440, errRewardNotFound.Error())
		case errors.Is(err, errInsufficientPoints):
			utils.Error(ctx, http.StatusBadRequest, 40041, errInsufficientPoints.Error())
		default:
			utils.Sugar.Errorf("redemption failed for user %d: %v", userID, err)
			utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to redeem reward")
		}
		return
	}

	utils.Success(ctx, gin.H{
		"message":          "reward redeemed",
		"remaining_points": remaining,
	})
}
