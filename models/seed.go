package models

import "gorm.io/gorm"

// SeedCatalog inserts the built-in achievement, task, and reward catalogs
// when the corresponding tables are empty. Safe to call on every boot.
func SeedCatalog(db *gorm.DB) error {
	var count int64

	if err := db.Model(&Achievement{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		achievements := []Achievement{
			{Code: AchFirstSteps, Name: "First Steps", Description: "Join the community", Category: "onboarding", XPReward: 100, Icon: "👣"},
			{Code: AchWeekWarrior, Name: "Week Warrior", Description: "Keep a 7 day streak", Category: "streak", Threshold: 7, XPReward: 500, Icon: "🔥"},
			{Code: AchMonthMaster, Name: "Month Master", Description: "Keep a 30 day streak", Category: "streak", Threshold: 30, XPReward: 1000, Icon: "🏆"},
			{Code: AchChatterbox, Name: "Chatterbox", Description: "Send 50 messages", Category: "social", Threshold: 50, XPReward: 250, Icon: "💬"},
			{Code: AchContentKing, Name: "Content King", Description: "Create 25 posts", Category: "content", Threshold: 25, XPReward: 750, Icon: "👑"},
		}
		if err := db.Create(&achievements).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&DailyTask{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		tasks := []DailyTask{
			{Title: "Daily check-in", Description: "Show up and check in", XPReward: 20},
			{Title: "Start a conversation", Description: "Send a message in any channel", XPReward: 30},
			{Title: "Share something", Description: "Create a post for the community", XPReward: 80},
		}
		if err := db.Create(&tasks).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&Reward{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		rewards := []Reward{
			{Name: "Custom role color", Description: "Pick your own name color", Cost: 500},
			{Name: "Shoutout", Description: "A shoutout in the announcements channel", Cost: 1500},
			{Name: "1:1 call", Description: "A 30 minute call with a community admin", Cost: 5000},
		}
		if err := db.Create(&rewards).Error; err != nil {
			return err
		}
	}

	return nil
}
