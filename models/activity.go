package models

import "time"

// Activity types stored in the log. Message and post rows feed the
// count-based achievement checks, so their spelling matters.
const (
	ActivityMessage     = "message"
	ActivityPost        = "post"
	ActivityReaction    = "reaction"
	ActivityTask        = "task"
	ActivityLevelUp     = "level_up"
	ActivityAchievement = "achievement"
)

// ActivityLog is the append-only trail of XP-earning events. It serves both
// the user-facing feed and threshold counting; rows are never updated.
type ActivityLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	ActivityType string    `gorm:"size:32;index;not null" json:"activity_type"`
	Description  string    `gorm:"size:255" json:"description"`
	XPEarned     int       `gorm:"default:0" json:"xp_earned"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}
