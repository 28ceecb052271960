package controllers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whoplift/whoplift/models"
	"github.com/whoplift/whoplift/testutil"
)

func TestFindOrCreateUserFirstLoginUnlocksFirstSteps(t *testing.T) {
	db := testutil.NewTestDB(t)
	ac := NewAuthController(db)

	info := &whopUser{ID: "whop_9", Username: "newbie"}
	user, err := ac.findOrCreateUser(info)
	require.NoError(t, err)
	require.Equal(t, "whop_9", user.WhopUserID)

	var ach models.Achievement
	require.NoError(t, db.Where("code = ?", models.AchFirstSteps).First(&ach).Error)
	var count int64
	require.NoError(t, db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", user.ID, ach.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 100, got.TotalPoints)
	// The 100 XP welcome bonus clears the level 1 threshold on the spot.
	require.Equal(t, 2, got.Level)
	require.Zero(t, got.XP)
}

func TestFindOrCreateUserRepeatLoginDoesNotReaward(t *testing.T) {
	db := testutil.NewTestDB(t)
	ac := NewAuthController(db)

	info := &whopUser{ID: "whop_9", Username: "newbie"}
	first, err := ac.findOrCreateUser(info)
	require.NoError(t, err)

	info.Username = "renamed"
	info.AvatarURL = "https://img.example/new.png"
	second, err := ac.findOrCreateUser(info)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.UserAchievement{}).Where("user_id = ?", first.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)

	var got models.User
	require.NoError(t, db.First(&got, first.ID).Error)
	require.Equal(t, 100, got.TotalPoints)
	require.Equal(t, "renamed", got.Username)
	require.Equal(t, "https://img.example/new.png", got.AvatarURL)
}
