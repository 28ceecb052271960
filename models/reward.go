package models

import "time"

// Reward is a shop item purchasable with points.
type Reward struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Cost        int       `gorm:"not null" json:"cost"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserReward records a permanent redemption. Points are deducted at
// redemption time; fulfillment happens outside this service.
type UserReward struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	RewardID   uint      `gorm:"not null" json:"reward_id"`
	RedeemedAt time.Time `json:"redeemed_at"`
}
