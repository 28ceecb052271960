package progression

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/whoplift/whoplift/models"
)

// Activity-count thresholds for the social achievements.
const (
	messageAchievementThreshold = 50
	postAchievementThreshold    = 25
)

// AwardAchievement unlocks the achievement with the given code for the user
// and credits its XP bonus. It is idempotent: a second call for the same
// pair is a no-op and credits nothing. Returns whether the unlock was new.
func AwardAchievement(db *gorm.DB, user *models.User, code string) (bool, error) {
	var ach models.Achievement
	if err := db.Where("code = ?", code).First(&ach).Error; err != nil {
		return false, fmt.Errorf("achievement %q: %w", code, err)
	}

	// The conflict target is the (user_id, achievement_id) unique index, so
	// a concurrent duplicate insert degrades to zero affected rows instead
	// of a double credit.
	unlock := models.UserAchievement{
		UserID:        user.ID,
		AchievementID: ach.ID,
		UnlockedAt:    time.Now(),
	}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(&unlock)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	if _, err := AwardXP(db, user, ach.XPReward, models.ActivityAchievement, fmt.Sprintf("Unlocked %s", ach.Name)); err != nil {
		return false, err
	}
	return true, nil
}

// CheckMessageAchievements counts the user's message activity and unlocks
// Chatterbox at the threshold. Past it, the count still runs but the unlock
// is an idempotent no-op.
func CheckMessageAchievements(db *gorm.DB, user *models.User) error {
	return checkCountAchievement(db, user, models.ActivityMessage, messageAchievementThreshold, models.AchChatterbox)
}

// CheckPostAchievements is the post-side twin of CheckMessageAchievements,
// unlocking Content King.
func CheckPostAchievements(db *gorm.DB, user *models.User) error {
	return checkCountAchievement(db, user, models.ActivityPost, postAchievementThreshold, models.AchContentKing)
}

func checkCountAchievement(db *gorm.DB, user *models.User, activityType string, threshold int, code string) error {
	var count int64
	if err := db.Model(&models.ActivityLog{}).
		Where("user_id = ? AND activity_type = ?", user.ID, activityType).
		Count(&count).Error; err != nil {
		return err
	}
	if count < int64(threshold) {
		return nil
	}
	_, err := AwardAchievement(db, user, code)
	return err
}
