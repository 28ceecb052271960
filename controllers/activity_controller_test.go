package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whoplift/whoplift/models"
	"github.com/whoplift/whoplift/progression"
	"github.com/whoplift/whoplift/testutil"
)

func TestActivityFeedNewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")
	ac := NewActivityController(db)

	for i := 0; i < 3; i++ {
		_, err := progression.AwardXP(db, user, 10, models.ActivityMessage, "msg")
		require.NoError(t, err)
		require.NoError(t, db.First(user, user.ID).Error)
	}

	c, w := newTestContext(t, user.ID, http.MethodGet, "/api/activity?limit=2", nil)
	ac.Feed(c)

	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Activity []models.ActivityLog `json:"activity"`
	}
	decodeData(t, w, &data)
	require.Len(t, data.Activity, 2)
	require.GreaterOrEqual(t, data.Activity[0].ID, data.Activity[1].ID)
	for _, entry := range data.Activity {
		require.Equal(t, user.ID, entry.UserID)
	}
}
