package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a community member known through Whop OAuth. XP accumulates toward
// the next level and resets on level-up; TotalPoints is a separate spendable
// ledger that only decreases on reward redemption.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	WhopUserID   string         `gorm:"size:64;uniqueIndex;not null" json:"whop_user_id"`
	Username     string         `gorm:"size:64;not null" json:"username"`
	Email        string         `gorm:"size:255" json:"email"`
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	Level        int            `gorm:"default:1" json:"level"`
	XP           int            `gorm:"default:0" json:"xp"`
	TotalPoints  int            `gorm:"default:0" json:"total_points"`
	Streak       int            `gorm:"default:0" json:"streak"`
	LastActivity *time.Time     `json:"last_activity"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
