package progression_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/whoplift/whoplift/models"
	"github.com/whoplift/whoplift/progression"
	"github.com/whoplift/whoplift/testutil"
)

func TestXPForLevel(t *testing.T) {
	cases := []struct {
		level int
		want  int
	}{
		{1, 100},
		{2, 150},
		{3, 225},
		{4, 337},
		{5, 506},
		{10, 3844},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, progression.XPForLevel(tc.level), "level %d", tc.level)
	}
}

func TestXPForLevelMonotonic(t *testing.T) {
	prev := 0
	for level := 1; level <= 50; level++ {
		cur := progression.XPForLevel(level)
		require.Greater(t, cur, prev, "level %d", level)
		prev = cur
	}
}

func TestAwardXPNoLevelUp(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")

	res, err := progression.AwardXP(db, user, 80, models.ActivityTask, "Completed a task")
	require.NoError(t, err)
	require.False(t, res.LeveledUp)
	require.Equal(t, 1, res.Level)
	require.Equal(t, 80, res.XP)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 1, got.Level)
	require.Equal(t, 80, got.XP)
	require.Equal(t, 80, got.TotalPoints)
}

func TestAwardXPLevelUpWithOverflow(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")

	_, err := progression.AwardXP(db, user, 80, models.ActivityTask, "first task")
	require.NoError(t, err)

	res, err := progression.AwardXP(db, user, 80, models.ActivityTask, "second task")
	require.NoError(t, err)
	require.True(t, res.LeveledUp)
	require.Equal(t, 2, res.Level)
	require.Equal(t, 60, res.XP)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 2, got.Level)
	require.Equal(t, 60, got.XP)
	require.Equal(t, 160, got.TotalPoints)
}

func TestAwardXPAdvancesAtMostOneLevel(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")

	// 500 XP clears level 1 (100) with 400 left, which still exceeds the
	// level 2 threshold (150); the surplus must stay banked as XP.
	res, err := progression.AwardXP(db, user, 500, models.ActivityTask, "big award")
	require.NoError(t, err)
	require.True(t, res.LeveledUp)
	require.Equal(t, 2, res.Level)
	require.Equal(t, 400, res.XP)
}

func TestAwardXPLogsLevelUpEntryWithoutCreditingBonus(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")

	_, err := progression.AwardXP(db, user, 120, models.ActivityTask, "task")
	require.NoError(t, err)

	var entries []models.ActivityLog
	require.NoError(t, db.Where("user_id = ? AND activity_type = ?", user.ID, models.ActivityLevelUp).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, 1000, entries[0].XPEarned)

	// The 1000 display bonus never reaches the points ledger.
	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 120, got.TotalPoints)
}

func TestAwardXPInterleavedAwardsBothCredit(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")

	// Two requests load the same user before either writes; neither award
	// may clobber the other.
	var a, b models.User
	require.NoError(t, db.First(&a, user.ID).Error)
	require.NoError(t, db.First(&b, user.ID).Error)

	_, err := progression.AwardXP(db, &a, 50, models.ActivityMessage, "first")
	require.NoError(t, err)
	_, err = progression.AwardXP(db, &b, 30, models.ActivityMessage, "second")
	require.NoError(t, err)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 80, got.XP)
	require.Equal(t, 80, got.TotalPoints)
}

func TestAwardXPRejectsNegativeAmount(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")

	_, err := progression.AwardXP(db, user, -5, models.ActivityTask, "nope")
	require.Error(t, err)
}

func TestUpdateStreakFirstActivity(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")

	res, err := progression.UpdateStreak(db, user)
	require.NoError(t, err)
	require.Equal(t, 1, res.Streak)
	require.NotNil(t, user.LastActivity)
}

func TestUpdateStreakConsecutiveDay(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")

	yesterday := time.Now().AddDate(0, 0, -1)
	user.Streak = 3
	user.LastActivity = &yesterday
	require.NoError(t, db.Save(user).Error)

	res, err := progression.UpdateStreak(db, user)
	require.NoError(t, err)
	require.Equal(t, 4, res.Streak)
}

func TestUpdateStreakGapResets(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")

	threeDaysAgo := time.Now().AddDate(0, 0, -3)
	user.Streak = 12
	user.LastActivity = &threeDaysAgo
	require.NoError(t, db.Save(user).Error)

	res, err := progression.UpdateStreak(db, user)
	require.NoError(t, err)
	require.Equal(t, 1, res.Streak)
}

func TestUpdateStreakSameDayUnchangedButStamped(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")

	earlier := time.Now().Add(-2 * time.Hour)
	user.Streak = 5
	user.LastActivity = &earlier
	require.NoError(t, db.Save(user).Error)

	res, err := progression.UpdateStreak(db, user)
	require.NoError(t, err)
	require.Equal(t, 5, res.Streak)
	require.True(t, user.LastActivity.After(earlier))
}

func TestUpdateStreakWeekMilestone(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")

	yesterday := time.Now().AddDate(0, 0, -1)
	user.Streak = 6
	user.LastActivity = &yesterday
	require.NoError(t, db.Save(user).Error)

	res, err := progression.UpdateStreak(db, user)
	require.NoError(t, err)
	require.Equal(t, 7, res.Streak)
	require.Equal(t, models.AchWeekWarrior, res.Unlocked)

	var ach models.Achievement
	require.NoError(t, db.Where("code = ?", models.AchWeekWarrior).First(&ach).Error)
	var count int64
	require.NoError(t, db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", user.ID, ach.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)

	// Milestone XP bonus lands on the points ledger.
	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 500, got.TotalPoints)
}

func TestUpdateStreakSkipsMilestoneWhenJumpedOver(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")

	// A streak that resets can never land on 7 from above; simulate the
	// equivalent by starting past the milestone.
	yesterday := time.Now().AddDate(0, 0, -1)
	user.Streak = 7
	user.LastActivity = &yesterday
	require.NoError(t, db.Save(user).Error)

	res, err := progression.UpdateStreak(db, user)
	require.NoError(t, err)
	require.Equal(t, 8, res.Streak)
	require.Empty(t, res.Unlocked)

	var count int64
	require.NoError(t, db.Model(&models.UserAchievement{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
}
