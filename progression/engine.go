package progression

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/whoplift/whoplift/models"
)

// levelUpBonusXP is the display value attached to level_up feed entries.
// It is not credited back through AwardXP.
const levelUpBonusXP = 1000

var errNegativeAmount = errors.New("xp amount must be non-negative")

// AwardResult reports the outcome of a single XP award.
type AwardResult struct {
	XPEarned  int  `json:"xp_earned"`
	LeveledUp bool `json:"leveled_up"`
	Level     int  `json:"level"`
	XP        int  `json:"xp"`
}

// XPForLevel returns the XP required to clear the given level:
// floor(100 * 1.5^(level-1)). Level 1 requires 100 XP.
func XPForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(100 * math.Pow(1.5, float64(level-1))))
}

// AwardXP applies an XP amount to the user, advancing at most one level per
// call; surplus past a second threshold stays as XP until a later award.
// Points always increase by exactly the awarded amount. The triggering
// activity is appended to the log, plus a level_up entry when a level turns.
// The user struct is refreshed from the store.
func AwardXP(db *gorm.DB, user *models.User, amount int, activityType, description string) (*AwardResult, error) {
	if amount < 0 {
		return nil, errNegativeAmount
	}

	// Increment in the store rather than writing values computed from the
	// caller's struct, which may be stale under interleaved awards.
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"xp":           gorm.Expr("xp + ?", amount),
		"total_points": gorm.Expr("total_points + ?", amount),
	}).Error; err != nil {
		return nil, err
	}
	if err := db.First(user, user.ID).Error; err != nil {
		return nil, err
	}

	leveledUp := false
	if needed := XPForLevel(user.Level); user.XP >= needed {
		// The level guard in the WHERE makes racing awards turn the level
		// at most once; the loser banks its XP for the next award.
		res := db.Model(&models.User{}).
			Where("id = ? AND level = ? AND xp >= ?", user.ID, user.Level, needed).
			Updates(map[string]interface{}{
				"level": user.Level + 1,
				"xp":    gorm.Expr("xp - ?", needed),
			})
		if res.Error != nil {
			return nil, res.Error
		}
		leveledUp = res.RowsAffected == 1
		if err := db.First(user, user.ID).Error; err != nil {
			return nil, err
		}
	}

	entry := models.ActivityLog{
		UserID:       user.ID,
		ActivityType: activityType,
		Description:  description,
		XPEarned:     amount,
	}
	if err := db.Create(&entry).Error; err != nil {
		return nil, err
	}

	if leveledUp {
		levelUp := models.ActivityLog{
			UserID:       user.ID,
			ActivityType: models.ActivityLevelUp,
			Description:  fmt.Sprintf("Reached level %d", user.Level),
			XPEarned:     levelUpBonusXP,
		}
		if err := db.Create(&levelUp).Error; err != nil {
			return nil, err
		}
	}

	return &AwardResult{
		XPEarned:  amount,
		LeveledUp: leveledUp,
		Level:     user.Level,
		XP:        user.XP,
	}, nil
}

// StreakResult reports the streak after an update and any milestone
// achievement unlocked by it.
type StreakResult struct {
	Streak   int    `json:"streak"`
	Unlocked string `json:"unlocked,omitempty"`
}

// UpdateStreak advances the consecutive-day counter: exactly one calendar
// day since the last activity extends the streak, a longer gap resets it
// to 1, and a same-day (or skewed negative) difference leaves it untouched.
// last_activity is stamped to now in every case. Streaks landing exactly on
// 7 or 30 unlock the corresponding milestone achievement.
func UpdateStreak(db *gorm.DB, user *models.User) (*StreakResult, error) {
	now := time.Now()

	if user.LastActivity == nil {
		user.Streak = 1
	} else {
		switch days := calendarDaysBetween(*user.LastActivity, now); {
		case days == 1:
			user.Streak++
		case days > 1:
			user.Streak = 1
		}
	}
	user.LastActivity = &now

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"streak":        user.Streak,
		"last_activity": now,
	}).Error; err != nil {
		return nil, err
	}

	res := &StreakResult{Streak: user.Streak}
	var milestone string
	switch user.Streak {
	case 7:
		milestone = models.AchWeekWarrior
	case 30:
		milestone = models.AchMonthMaster
	}
	if milestone != "" {
		unlocked, err := AwardAchievement(db, user, milestone)
		if err != nil {
			return nil, err
		}
		if unlocked {
			res.Unlocked = milestone
		}
	}

	return res, nil
}

// calendarDaysBetween counts whole local calendar days from a to b,
// ignoring the time of day.
func calendarDaysBetween(a, b time.Time) int {
	aMid := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, a.Location())
	bMid := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, b.Location())
	return int(bMid.Sub(aMid).Hours() / 24)
}
