package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/whoplift/whoplift/models"
	"github.com/whoplift/whoplift/progression"
	"github.com/whoplift/whoplift/utils"
)

// TaskController handles the daily task catalog and completions.
type TaskController struct {
	db *gorm.DB
}

var (
	errTaskNotFound     = errors.New("task not found")
	errAlreadyCompleted = errors.New("task already completed today")
)

// NewTaskController creates a TaskController.
func NewTaskController(db *gorm.DB) *TaskController {
	return &TaskController{db: db}
}

// Daily returns the active task catalog joined with today's completion state.
func (t *TaskController) Daily(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var tasks []models.DailyTask
	if err := t.db.Where("active = ?", true).Order("id ASC").Find(&tasks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load tasks")
		return
	}

	var completions []models.UserTask
	if err := t.db.Where("user_id = ? AND day = ?", userID, todayStart()).Find(&completions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load completions")
		return
	}
	done := make(map[uint]models.UserTask, len(completions))
	for _, c := range completions {
		done[c.TaskID] = c
	}

	items := make([]gin.H, 0, len(tasks))
	for _, task := range tasks {
		c, completed := done[task.ID]
		item := gin.H{
			"id":             task.ID,
			"title":          task.Title,
			"description":    task.Description,
			"required_count": task.RequiredCount,
			"xp_reward":      task.XPReward,
			"completed":      completed && c.Completed,
		}
		if completed && c.CompletedAt != nil {
			item["completed_at"] = c.CompletedAt
		}
		items = append(items, item)
	}

	utils.Success(ctx, gin.H{"tasks": items})
}

// Complete records a same-day-unique completion, awards the task's XP, and
// advances the streak. Completing a task twice on one calendar day is a
// business-rule error.
func (t *TaskController) Complete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		TaskID uint `json:"taskId" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	var award *progression.AwardResult
	var streak *progression.StreakResult

	err := t.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		var task models.DailyTask
		if err := tx.Where("id = ? AND active = ?", req.TaskID, true).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errTaskNotFound
			}
			return err
		}

		now := time.Now()
		completion := models.UserTask{
			UserID:      user.ID,
			TaskID:      task.ID,
			Day:         todayStart(),
			Completed:   true,
			Progress:    task.RequiredCount,
			CompletedAt: &now,
		}
		// The (user_id, task_id, day) unique index is the same-day guard; a
		// conflicting insert affects zero rows instead of erroring.
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "task_id"}, {Name: "day"}},
			DoNothing: true,
		}).Create(&completion)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyCompleted
		}

		var err error
		if award, err = progression.AwardXP(tx, &user, task.XPReward, models.ActivityTask, "Completed "+task.Title); err != nil {
			return err
		}
		if streak, err = progression.UpdateStreak(tx, &user); err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, errTaskNotFound):
			utils.Error(ctx, http.StatusNotFound, 40430, errTaskNotFound.Error())
		case errors.Is(err, errAlreadyCompleted):
			utils.Error(ctx, http.StatusBadRequest, 40031, errAlreadyCompleted.Error())
		default:
			utils.Sugar.Errorf("task completion failed for user %d: %v", userID, err)
			utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to complete task")
		}
		return
	}

	utils.Success(ctx, gin.H{
		"xp_earned":  award.XPEarned,
		"leveled_up": award.LeveledUp,
		"level":      award.Level,
		"xp":         award.XP,
		"streak":     streak.Streak,
	})
}

// todayStart returns local midnight, the canonical Day value for completions.
func todayStart() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
