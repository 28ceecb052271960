package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/whoplift/whoplift/models"
	"github.com/whoplift/whoplift/testutil"
)

func TestCompleteUnknownTask(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")
	tc := NewTaskController(db)

	c, w := newTestContext(t, user.ID, http.MethodPost, "/api/tasks/complete", map[string]uint{"taskId": 9999})
	tc.Complete(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompleteAwardsXPAndStreak(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")
	tc := NewTaskController(db)

	var task models.DailyTask
	require.NoError(t, db.First(&task).Error)

	c, w := newTestContext(t, user.ID, http.MethodPost, "/api/tasks/complete", map[string]uint{"taskId": task.ID})
	tc.Complete(c)

	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		XPEarned int `json:"xp_earned"`
		Level    int `json:"level"`
		Streak   int `json:"streak"`
	}
	decodeData(t, w, &data)
	require.Equal(t, task.XPReward, data.XPEarned)
	require.Equal(t, 1, data.Streak)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, task.XPReward, got.TotalPoints)
	require.Equal(t, 1, got.Streak)
}

func TestCompleteSameDayConflict(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")
	tc := NewTaskController(db)

	var task models.DailyTask
	require.NoError(t, db.First(&task).Error)

	c1, w1 := newTestContext(t, user.ID, http.MethodPost, "/api/tasks/complete", map[string]uint{"taskId": task.ID})
	tc.Complete(c1)
	require.Equal(t, http.StatusOK, w1.Code)

	c2, w2 := newTestContext(t, user.ID, http.MethodPost, "/api/tasks/complete", map[string]uint{"taskId": task.ID})
	tc.Complete(c2)
	require.Equal(t, http.StatusBadRequest, w2.Code)

	// The rejected second attempt must not double-credit.
	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, task.XPReward, got.TotalPoints)
}

func TestCompleteDifferentTasksSameDay(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")
	tc := NewTaskController(db)

	var tasks []models.DailyTask
	require.NoError(t, db.Order("id ASC").Limit(2).Find(&tasks).Error)
	require.Len(t, tasks, 2)

	c1, w1 := newTestContext(t, user.ID, http.MethodPost, "/api/tasks/complete", map[string]uint{"taskId": tasks[0].ID})
	tc.Complete(c1)
	require.Equal(t, http.StatusOK, w1.Code)

	c2, w2 := newTestContext(t, user.ID, http.MethodPost, "/api/tasks/complete", map[string]uint{"taskId": tasks[1].ID})
	tc.Complete(c2)
	require.Equal(t, http.StatusOK, w2.Code)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, tasks[0].XPReward+tasks[1].XPReward, got.TotalPoints)
	// Same-day repeat activity keeps the streak at 1.
	require.Equal(t, 1, got.Streak)
}

func TestDailyListsCompletionState(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")
	tc := NewTaskController(db)

	var task models.DailyTask
	require.NoError(t, db.First(&task).Error)

	now := time.Now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	require.NoError(t, db.Create(&models.UserTask{
		UserID:      user.ID,
		TaskID:      task.ID,
		Day:         day,
		Completed:   true,
		CompletedAt: &now,
	}).Error)

	c, w := newTestContext(t, user.ID, http.MethodGet, "/api/tasks/daily", nil)
	tc.Daily(c)

	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Tasks []struct {
			ID        uint `json:"id"`
			Completed bool `json:"completed"`
		} `json:"tasks"`
	}
	decodeData(t, w, &data)
	require.NotEmpty(t, data.Tasks)

	found := false
	for _, item := range data.Tasks {
		if item.ID == task.ID {
			found = true
			require.True(t, item.Completed)
		} else {
			require.False(t, item.Completed)
		}
	}
	require.True(t, found)
}
