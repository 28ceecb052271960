package models

import "time"

// DailyTask is a catalog entry describing a repeatable daily objective.
// The catalog is static at request time; inactive tasks are never served.
type DailyTask struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:128;not null" json:"title"`
	Description   string    `gorm:"size:255" json:"description"`
	RequiredCount int       `gorm:"default:1" json:"required_count"`
	XPReward      int       `gorm:"not null" json:"xp_reward"`
	Active        bool      `gorm:"default:true" json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserTask records one user's completion of one task on one calendar day.
// Day is local midnight; the composite unique index is the authoritative
// same-day guard.
type UserTask struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_user_task_day" json:"user_id"`
	TaskID      uint       `gorm:"not null;uniqueIndex:idx_user_task_day" json:"task_id"`
	Day         time.Time  `gorm:"not null;uniqueIndex:idx_user_task_day" json:"day"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	Progress    int        `gorm:"default:0" json:"progress"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}
