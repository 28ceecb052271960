package models

import "time"

// Achievement codes referenced by the progression engine. The rows themselves
// are seeded at migration time; codes are the stable lookup keys.
const (
	AchFirstSteps  = "first_steps"
	AchWeekWarrior = "week_warrior"
	AchMonthMaster = "month_master"
	AchChatterbox  = "chatterbox"
	AchContentKing = "content_king"
)

// Achievement is a one-time-unlockable milestone granting a fixed XP bonus.
// Threshold is the qualifying activity count for count-based categories and
// the streak length for streak-based ones.
type Achievement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Category    string    `gorm:"size:32;index" json:"category"`
	Threshold   int       `gorm:"default:0" json:"threshold"`
	XPReward    int       `gorm:"not null" json:"xp_reward"`
	Icon        string    `gorm:"size:16" json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserAchievement marks an unlock; existence means unlocked. The composite
// unique index backs the at-most-once guarantee.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
